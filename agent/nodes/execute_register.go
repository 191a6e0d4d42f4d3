package tourbotnode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
	toolx "github.com/sam-admissions/tourbot/agent/tool"
)

const (
	ReplyInvalidData = "Creo que hubo un problema con los datos. ¿Me confirmas nuevamente la fecha que deseas?"
	ReplyInvalidTour = "Necesito confirmar la fecha exacta del tour. ¿Cuál deseas?"
	ReplyFailure     = "No logré completar el registro. ¿Podrías confirmarme nuevamente tus datos?"
	ReplySuccess     = "¡Listo! Tu registro al tour fue procesado con éxito. En breve recibirás la confirmación por correo."
	ReplyWaitListed  = "Algunos grados quedaron en lista de espera; igual están invitados al tour."
)

// HasToolCall reports whether the model asked for a tool invocation.
func HasToolCall(in *GraphState) bool {
	return in != nil && in.ModelMsg != nil && len(in.ModelMsg.ToolCalls) > 0
}

// ExecuteRegister runs the registration tool call the model requested
// and renders a canned reply. Failures never abort the turn; the family
// always gets an answer and the thread still saves.
func ExecuteRegister(ctx context.Context, in *GraphState, executor toolx.Executor, notifier contractx.Notifier) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if !HasToolCall(in) {
		return nil, fmt.Errorf("%w: no tool call to execute", contractx.ErrValidation)
	}

	call := in.ModelMsg.ToolCalls[0]
	toolName := strings.TrimSpace(call.Function.Name)

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			log.Warn().Err(err).Str("tool", toolName).Msg("tool args are not valid json")
			in.Reply = ReplyInvalidData
			return in, nil
		}
	}

	result, err := executor(ctx, toolName, args)
	if err != nil {
		log.Error().Err(err).Str("tool", toolName).Msg("tool execution failed")
		in.Reply = ReplyFailure
		return in, nil
	}

	in.RegisterResult = &result

	if !result.OK() {
		log.Warn().Str("tool", toolName).Str("reason", result.Message).Msg("registration rejected")
		if strings.Contains(strings.ToLower(result.Message), "tour") {
			in.Reply = ReplyInvalidTour
		} else {
			in.Reply = ReplyInvalidData
		}
		return in, nil
	}

	reply := ReplySuccess
	if result.WaitListed {
		reply += " " + ReplyWaitListed
	}
	in.Reply = reply
	if in.Thread != nil {
		in.Thread.Registered = true
	}

	if notifier != nil {
		email, _ := args["email"].(string)
		if err := notifier.RegistrationCreated(ctx, result, strings.TrimSpace(email)); err != nil {
			log.Warn().Err(err).Int64("registration_id", result.RegistrationID).Msg("confirmation publish failed")
		}
	}

	return in, nil
}
