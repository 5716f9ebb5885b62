package handlers

import "bancoquestoes/internal/models"

// PageData carries everything the panel template needs to render a view
type PageData struct {
	Title         string
	View          string
	NomeCompleto  string
	FotoPerfilURL string
	Theme         string
	CSRFToken     string
	AIEnabled     bool
	Flash         *Flash
	User          *models.User
	Questoes      []models.Question
	SearchQuery   string
}
