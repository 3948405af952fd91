package domain

type ContentTotals struct {
	Total  int `json:"total"`
	Movies int `json:"movies"`
	Series int `json:"series"`
}

type SourceTotals struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

type SyncTotals struct {
	InProgress  int     `json:"in_progress"`
	Errors24h   int     `json:"errors_24h"`
	SuccessRate float64 `json:"success_rate"`
}

// DashboardStats agrège les compteurs de /dashboard/stats.
type DashboardStats struct {
	TotalContent ContentTotals `json:"total_content"`
	Sources      SourceTotals  `json:"sources"`
	SyncStatus   SyncTotals    `json:"sync_status"`
}

// MoviesShare renvoie la part des films en pourcentage (0 si aucun contenu).
func (s DashboardStats) MoviesShare() float64 {
	return share(s.TotalContent.Movies, s.TotalContent.Total)
}

func (s DashboardStats) SeriesShare() float64 {
	return share(s.TotalContent.Series, s.TotalContent.Total)
}

func (s DashboardStats) Idle() bool {
	return s.SyncStatus.InProgress == 0
}

func share(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
