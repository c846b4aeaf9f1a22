package models

// Review is a court review. Court detail pages embed reviews with User set;
// /resenas/mis-resenas fills CourtID and CourtName instead.
type Review struct {
	ID        int    `json:"id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	User      string `json:"user,omitempty"`
	Date      string `json:"date,omitempty"`
	CourtID   int    `json:"canchaId,omitempty"`
	CourtName string `json:"canchaNombre,omitempty"`
}

// CreateReviewRequest is the body of POST /resenas.
type CreateReviewRequest struct {
	ReservationID int    `json:"id_reserva"`
	Rating        int    `json:"calificacion"`
	Comment       string `json:"comentario"`
}

// UpdateReviewRequest is the body of PUT /resenas/{id}.
type UpdateReviewRequest struct {
	Rating  int    `json:"calificacion"`
	Comment string `json:"comentario"`
}

// AddFavoriteRequest is the body of POST /favoritos.
type AddFavoriteRequest struct {
	CourtID int `json:"id_cancha"`
}
