package validation

// Form schemas shared by the client services. Messages are shown verbatim.

var RegisterSchema = MustCompile("register",
	[]string{"nombre", "email", "password"},
	map[string]string{
		"nombre":   "name is required",
		"email":    "enter a valid email",
		"password": "password must be at least 6 characters",
	},
	Object(map[string]interface{}{
		"nombre":   NonBlank(),
		"email":    Pattern(`\S+@\S+\.\S+`),
		"password": map[string]interface{}{"type": "string", "minLength": 6},
	}),
)

var VerifyEmailSchema = MustCompile("verify-email",
	[]string{"email", "code"},
	map[string]string{
		"email": "enter a valid email",
		"code":  "the code must have 6 digits",
	},
	Object(map[string]interface{}{
		"email": Pattern(`\S+@\S+\.\S+`),
		"code":  Pattern(`^\d{6}$`),
	}),
)

var ReviewSchema = MustCompile("review",
	[]string{"id_reserva", "calificacion", "comentario"},
	map[string]string{
		"id_reserva":   "reservation is required",
		"calificacion": "rating must be between 1 and 5",
		"comentario":   "comment is required",
	},
	Object(map[string]interface{}{
		"id_reserva":   PositiveID(),
		"calificacion": IntRange(1, 5),
		"comentario":   NonBlank(),
	}),
)

var ReviewUpdateSchema = MustCompile("review-update",
	[]string{"calificacion", "comentario"},
	ReviewSchema.Messages,
	Object(map[string]interface{}{
		"calificacion": IntRange(1, 5),
		"comentario":   NonBlank(),
	}),
)

var CompanyRequestSchema = MustCompile("company-request",
	[]string{"nombre", "ruc"},
	map[string]string{
		"nombre": "company name and RUC are required",
		"ruc":    "RUC must have exactly 11 digits",
	},
	Object(map[string]interface{}{
		"nombre": NonBlank(),
		"ruc":    Pattern(`^\d{11}$`),
	}),
)

var CompanyUpdateSchema = MustCompile("company-update",
	[]string{"nombre"},
	map[string]string{"nombre": "company name is required"},
	Object(map[string]interface{}{
		"nombre": NonBlank(),
	}),
)

var VenueSchema = MustCompile("venue",
	[]string{"nombre_sede", "ubicacion_texto", "latitud", "longitud"},
	map[string]string{
		"nombre_sede":     "venue name is required",
		"ubicacion_texto": "address is required",
		"latitud":         "latitude must be between -90 and 90",
		"longitud":        "longitude must be between -180 and 180",
	},
	map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"nombre_sede":     NonBlank(),
			"ubicacion_texto": NonBlank(),
			"latitud":         map[string]interface{}{"type": []interface{}{"number", "null"}, "minimum": -90, "maximum": 90},
			"longitud":        map[string]interface{}{"type": []interface{}{"number", "null"}, "minimum": -180, "maximum": 180},
		},
		"required": []interface{}{"nombre_sede", "ubicacion_texto"},
	},
)

var ManagedCourtSchema = MustCompile("court",
	[]string{"id_sede", "id_tipo_deporte", "id_tipo_superficie", "nombre", "precio_por_hora", "descripcion", "foto_url_1"},
	map[string]string{
		"id_sede":            "choose a venue",
		"id_tipo_deporte":    "choose a sport",
		"id_tipo_superficie": "choose a surface",
		"nombre":             "court name is required",
		"precio_por_hora":    "price per hour must be greater than zero",
		"descripcion":        "description is required",
		"foto_url_1":         "the main photo URL is required",
	},
	Object(map[string]interface{}{
		"id_sede":            PositiveID(),
		"id_tipo_deporte":    PositiveID(),
		"id_tipo_superficie": PositiveID(),
		"nombre":             NonBlank(),
		"precio_por_hora":    map[string]interface{}{"type": "number", "minimum": 0.01},
		"descripcion":        NonBlank(),
		"foto_url_1":         NonBlank(),
	}),
)

var AdminCompanySchema = MustCompile("admin-company",
	[]string{"nombre", "ruc"},
	CompanyRequestSchema.Messages,
	Object(map[string]interface{}{
		"nombre": NonBlank(),
		"ruc":    Pattern(`^\d{11}$`),
	}),
)

const msgCardHolder = "complete all holder and contact fields correctly"

var CardSchema = MustCompile("card",
	[]string{"numero_tarjeta", "vencimiento", "cvv", "titular", "documento", "email", "telefono"},
	map[string]string{
		"numero_tarjeta": "invalid card number (16 digits)",
		"vencimiento":    "invalid expiry date (MM/YY)",
		"cvv":            "invalid CVV (3 or 4 digits)",
		"titular":        msgCardHolder,
		"documento":      msgCardHolder,
		"email":          msgCardHolder,
		"telefono":       msgCardHolder,
	},
	Object(map[string]interface{}{
		"numero_tarjeta": Pattern(`^\d{16}$`),
		"vencimiento":    Pattern(`^(0[1-9]|1[0-2])/\d{2}$`),
		"cvv":            Pattern(`^\d{3,4}$`),
		"titular":        map[string]interface{}{"type": "string", "minLength": 5},
		"documento":      map[string]interface{}{"type": "string", "minLength": 7},
		"email":          Pattern(`\S+@\S+\.\S+`),
		"telefono":       Pattern(`^\d{9,}$`),
	}),
)
