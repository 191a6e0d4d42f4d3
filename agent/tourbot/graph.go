package tourbot

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	tourbotnode "github.com/sam-admissions/tourbot/agent/nodes"
	toolx "github.com/sam-admissions/tourbot/agent/tool"
)

// compileTurnGraph builds the prompt+model pipeline for a single chat
// turn. The template grounds the model on live tour data and exposes
// the registration tool.
func compileTurnGraph(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	toolModel, err := chatModel.WithTools(toolx.Infos())
	if err != nil {
		return nil, fmt.Errorf("bind registration tool: %w", err)
	}

	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.SystemMessage("Fechas de tour disponibles (JSON):\n{tour_context}"),
		schema.SystemMessage("Cupos disponibles por grado (JSON):\n{capacity_context}"),
		schema.SystemMessage("Resumen de la conversación previa:\n{summary}"),
		schema.MessagesPlaceholder("history", false),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add turn prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", toolModel); err != nil {
		return nil, fmt.Errorf("add turn model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add turn edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add turn edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add turn edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("tourbot.turn_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}

func (t *Tourbot) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[tourbotnode.GraphInput, tourbotnode.GraphOutput], error) {
	graph := compose.NewGraph[tourbotnode.GraphInput, tourbotnode.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in tourbotnode.GraphInput) (*tourbotnode.GraphState, error) {
			return tourbotnode.ValidateRequest(in, t.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_thread",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (*tourbotnode.GraphState, error) {
			return tourbotnode.LoadOrCreateThread(ctx, in, t.threads)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_thread: %w", err)
	}

	if err := graph.AddLambdaNode("load_catalog",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (*tourbotnode.GraphState, error) {
			return tourbotnode.LoadCatalog(ctx, in, t.directory)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_catalog: %w", err)
	}

	if err := graph.AddLambdaNode("invoke_model",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (*tourbotnode.GraphState, error) {
			return tourbotnode.InvokeModel(ctx, in, t.turnRunner)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node invoke_model: %w", err)
	}

	if err := graph.AddLambdaNode("execute_register",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (*tourbotnode.GraphState, error) {
			return tourbotnode.ExecuteRegister(ctx, in, t.executor, t.notifier)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_register: %w", err)
	}

	if err := graph.AddLambdaNode("compose_reply",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (*tourbotnode.GraphState, error) {
			return tourbotnode.ComposeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node compose_reply: %w", err)
	}

	if err := graph.AddLambdaNode("save_thread",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (*tourbotnode.GraphState, error) {
			return tourbotnode.SaveThread(ctx, in, t.threads, t.extractor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_thread: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *tourbotnode.GraphState) (tourbotnode.GraphOutput, error) {
			return tourbotnode.FinalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *tourbotnode.GraphState) (string, error) {
			if tourbotnode.HasToolCall(in) {
				return "execute_register", nil
			}
			return "compose_reply", nil
		},
		map[string]bool{
			"execute_register": true,
			"compose_reply":    true,
		},
	)
	if err := graph.AddBranch("invoke_model", branch); err != nil {
		return nil, fmt.Errorf("add register branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_thread"},
		{"load_thread", "load_catalog"},
		{"load_catalog", "invoke_model"},
		{"execute_register", "save_thread"},
		{"compose_reply", "save_thread"},
		{"save_thread", "finalize_reply"},
		{"finalize_reply", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("tourbot.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile tourbot graph: %w", err)
	}
	return runner, nil
}
