package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	// Login is unauthenticated and sits behind the strict fail-closed
	// policy; everything else shares the per-caller api policy.
	auth := api.Group("/auth", s.middleware.Admission.Policy("auth"))
	auth.POST("/login", s.login)

	// Household signup is unauthenticated too.
	api.POST("/households", s.createHousehold, s.middleware.Admission.Policy("auth"))

	protected := api.Group("", s.middleware.Auth.RequireAuth(), s.middleware.Admission.Policy("api"))

	protected.GET("/households/me", s.getOwnHousehold)
	protected.PUT("/households/me/settings", s.updateHouseholdSettings)
	protected.PUT("/households/me/status", s.setHouseholdStatus)

	members := protected.Group("/members")
	members.GET("", s.listMembers)
	members.POST("", s.addMember)
	members.DELETE("/:id", s.removeMember)

	records := protected.Group("/records")
	records.GET("/suggestions", s.getSuggestions)
	records.GET("", s.listRecords)
	records.POST("", s.createRecord)
	records.GET("/:id", s.getRecord)
	records.DELETE("/:id", s.deleteRecord)

	protected.GET("/insights", s.getInsights)
}
