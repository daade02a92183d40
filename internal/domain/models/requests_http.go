package models

// Requests for the analysis HTTP endpoints.

type AnalyzeRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required"`
	Horizon string `query:"horizon" json:"horizon" default:"short" validate:"oneof=micro short medium long macro"`
}

type MultiscaleRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Horizons string `query:"horizons" json:"horizons"` // comma separated, empty = configured set
}

type AlertsRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
}
