package schema

func floatPtr(v float64) *float64 { return &v }

// Default returns the built-in fallback schema used when the variables
// endpoint is unreachable. It keeps the collection flow functional without a
// backing database and mirrors the reference study's baseline instrument.
func Default() Schema {
	return Schema{
		Sections: []Section{
			{
				Title: "Datos Demográficos",
				Fields: []Field{
					{ID: "EDAD", Label: "Edad", Type: FieldTypeNumber, Required: true,
						Validation: Validation{Min: floatPtr(18), Max: floatPtr(100)}},
					{ID: "SEXO", Label: "Sexo Biológico", Type: FieldTypeRadio, Required: true,
						Options: []string{"Masculino", "Femenino", "Otro"}},
					{ID: "ESCOLARIDAD", Label: "Nivel de Escolaridad", Type: FieldTypeSelect,
						Options: []string{"Primaria", "Secundaria", "Universitaria", "Posgrado"}},
				},
			},
			{
				Title: "Antecedentes Médicos",
				Fields: []Field{
					{ID: "ANT_FAMILIARES", Label: "Antecedentes Familiares", Type: FieldTypeTextarea},
					{ID: "ALERGIAS", Label: "Alergias Conocidas", Type: FieldTypeCheckbox,
						Options: []string{"Penicilina", "Polen", "Ninguna"}},
					{ID: "TABAQUISMO", Label: "¿Fuma actualmente?", Type: FieldTypeRadio, Required: true,
						Options: []string{"Sí", "No"}},
				},
			},
			{
				Title: "Evaluación Clínica",
				Fields: []Field{
					{ID: "PESO", Label: "Peso (kg)", Type: FieldTypeNumber, Required: true},
					{ID: "TALLA", Label: "Talla (cm)", Type: FieldTypeNumber, Required: true},
					{ID: "IMC", Label: "IMC Calculado", Type: FieldTypeText,
						Placeholder: "Automático o manual"},
				},
			},
		},
	}
}
