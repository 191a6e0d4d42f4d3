package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
	tourcontract "github.com/sam-admissions/tourbot/tour/contract"
)

const (
	ToolRegisterUser = "register_user"
)

type Executor func(ctx context.Context, tool string, args map[string]any) (tourcontract.RegisterResult, error)

// Infos declares the tool surface exposed to the chat model.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolRegisterUser,
			Desc: "Registra a una familia en un tour del colegio una vez confirmados todos sus datos.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"name": {
					Type:     schema.String,
					Desc:     "Nombre completo de la persona de contacto",
					Required: true,
				},
				"email": {
					Type:     schema.String,
					Desc:     "Correo electrónico de contacto",
					Required: true,
				},
				"phone": {
					Type:     schema.String,
					Desc:     "Teléfono de contacto",
					Required: true,
				},
				"grade": {
					Type: schema.String,
					Desc: "Grado de interés, por ejemplo 'Inicial' o '3° EGB'. Puede ser una lista separada por comas.",
				},
				"grades": {
					Type:     schema.Array,
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
					Desc:     "Lista de grados de interés cuando hay más de uno",
				},
				"tour_date_id": {
					Type: schema.Integer,
					Desc: "Identificador de la fecha de tour elegida, tomado del contexto de fechas",
				},
				"tour_selector": {
					Type: schema.String,
					Desc: "Texto con el que la familia eligió la fecha (número de lista, ordinal o fecha) si no se conoce el identificador",
				},
			}),
		},
	}
}

// NewExecutor routes tool calls from the chat model to the registrar.
func NewExecutor(registrar contractx.Registrar) Executor {
	return func(ctx context.Context, tool string, args map[string]any) (tourcontract.RegisterResult, error) {
		switch tool {
		case ToolRegisterUser:
			parsed, err := ParseRegisterArgs(args)
			if err != nil {
				return tourcontract.RegisterResult{
					Status:  tourcontract.StatusError,
					Message: err.Error(),
				}, nil
			}
			return registrar.RegisterUser(ctx, parsed)
		default:
			return tourcontract.RegisterResult{
				Status:  tourcontract.StatusError,
				Message: fmt.Sprintf("tool=%s is unavailable", tool),
			}, nil
		}
	}
}

// ParseRegisterArgs normalizes the loosely typed argument map a model
// emits into RegisterArgs. Grades may arrive as a single string, a
// comma-joined string or a list; tour_date_id as any JSON number shape.
func ParseRegisterArgs(args map[string]any) (tourcontract.RegisterArgs, error) {
	out := tourcontract.RegisterArgs{
		Name:         stringArg(args, "name"),
		Email:        stringArg(args, "email"),
		Phone:        stringArg(args, "phone"),
		TourSelector: stringArg(args, "tour_selector"),
		Grades:       gradesArg(args),
	}

	id, err := intArg(args, "tour_date_id")
	if err != nil {
		return tourcontract.RegisterArgs{}, err
	}
	out.TourDateID = id

	return out, nil
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func gradesArg(args map[string]any) []string {
	var out []string
	appendGrade := func(raw string) {
		for _, part := range strings.Split(raw, ",") {
			if g := strings.TrimSpace(part); g != "" {
				out = append(out, g)
			}
		}
	}

	switch v := args["grades"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				appendGrade(s)
			}
		}
	case []string:
		for _, s := range v {
			appendGrade(s)
		}
	case string:
		appendGrade(v)
	}

	if s, ok := args["grade"].(string); ok {
		appendGrade(s)
	}
	return out
}

func intArg(args map[string]any, key string) (int64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return parsed, nil
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", key)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}
