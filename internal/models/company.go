package models

// CompanyStatus values used by the backend for applications and companies.
type CompanyStatus string

const (
	CompanyPending  CompanyStatus = "pendiente"
	CompanyActive   CompanyStatus = "activa"
	CompanyRejected CompanyStatus = "rechazada"
	CompanyInactive CompanyStatus = "inactiva"
)

// Company is a business account or its pending application.
type Company struct {
	ID              int           `json:"id_empresa,omitempty"`
	Name            string        `json:"nombre"`
	RUC             string        `json:"ruc"`
	Description     string        `json:"descripcion,omitempty"`
	Status          CompanyStatus `json:"estado,omitempty"`
	RejectionReason string        `json:"motivo_rechazo,omitempty"`
}

// CompanyRequest is the body of POST /empresas/solicitar-registro.
type CompanyRequest struct {
	Name        string `json:"nombre"`
	RUC         string `json:"ruc"`
	Description string `json:"descripcion"`
}

// CompanyUpdate is the body of PUT /empresa/mi-empresa.
type CompanyUpdate struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

// DeletionCheck is the answer of GET /empresa/delete-check.
type DeletionCheck struct {
	CanDelete bool   `json:"puede_eliminar"`
	Message   string `json:"mensaje,omitempty"`
}

// DeletionConfirm is the body of POST /empresa/delete-confirm.
type DeletionConfirm struct {
	Password string `json:"password"`
}

// Admin review actions.
const (
	ActionApprove = "aprobar"
	ActionReject  = "rechazar"
)

// ApplicationDecision is the body of PUT /admin/solicitudes/{id}.
type ApplicationDecision struct {
	Action string `json:"accion"`
	Reason string `json:"motivo,omitempty"`
}

// AdminCompanyUpdate is the body of PUT /admin/empresas/{id}.
type AdminCompanyUpdate struct {
	Name string `json:"nombre"`
	RUC  string `json:"ruc"`
}

// CompanyStatusUpdate is the body of PUT /admin/empresas/{id}/estado.
type CompanyStatusUpdate struct {
	Status CompanyStatus `json:"estado"`
}

// CourtStatusUpdate is the body of PUT /empresa/canchas/{id}/estado.
type CourtStatusUpdate struct {
	Active bool `json:"estado"`
}
