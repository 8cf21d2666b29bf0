package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/HuaTug/LLM/logger"
	"github.com/HuaTug/LLM/messages"
	"github.com/HuaTug/LLM/metrics"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// LatestMessagesTool is the name of the tool served by NewMessagesServer.
const LatestMessagesTool = "get_latest_messages"

// NewMessagesServer creates an MCP server exposing the get_latest_messages tool
// over the given retriever. The tool returns the messages as a JSON array.
//
// Example:
//
//	srv := mcp.NewMessagesServer(messages.NewDemoRetriever(), log)
//	if err := server.ServeStdio(srv); err != nil {
//	    log.Errorw("mcp server stopped", "error", err)
//	}
func NewMessagesServer(retriever *messages.Retriever, log logger.Logger) *server.MCPServer {
	if log == nil {
		log = logger.NopLogger()
	}

	s := server.NewMCPServer("latest-messages", "1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	tool := mcp.NewTool(LatestMessagesTool,
		mcp.WithDescription("Get the latest messages from news, company updates, market data and user feedback, newest first."),
		mcp.WithNumber("hours_back",
			mcp.Description("How many hours back to look. Must be positive."),
			mcp.DefaultNumber(messages.DefaultHoursBack),
		),
		mcp.WithArray("categories",
			mcp.Description("Only return these categories: technology, business, product, finance, feedback. Omit for all."),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hoursBack := request.GetInt("hours_back", messages.DefaultHoursBack)
		categories, err := categoriesArg(request)
		if err != nil {
			metrics.IncMessagesRequest(metrics.StatusInvalid)
			return mcp.NewToolResultError(err.Error()), nil
		}

		msgs, err := retriever.GetLatestMessages(ctx, hoursBack, categories)
		if err != nil {
			if errors.Is(err, messages.ErrInvalidArgument) {
				metrics.IncMessagesRequest(metrics.StatusInvalid)
			} else {
				metrics.IncMessagesRequest(metrics.StatusError)
				log.ErrorwCtx(ctx, "get_latest_messages failed", "error", err)
			}
			return mcp.NewToolResultError(err.Error()), nil
		}
		metrics.IncMessagesRequest(metrics.StatusSuccess)

		data, err := json.Marshal(msgs)
		if err != nil {
			return nil, err
		}
		log.DebugwCtx(ctx, "get_latest_messages served", "hours_back", hoursBack, "count", len(msgs))
		return mcp.NewToolResultText(string(data)), nil
	})

	return s
}

// categoriesArg reads the categories filter. Only an absent or null argument
// disables filtering; an empty list matches nothing.
func categoriesArg(request mcp.CallToolRequest) (messages.CategorySet, error) {
	if v, ok := request.GetArguments()["categories"]; !ok || v == nil {
		return nil, nil
	}
	values, err := request.RequireStringSlice("categories")
	if err != nil {
		return nil, fmt.Errorf("%w: categories must be a list of strings", messages.ErrInvalidArgument)
	}
	return messages.CategorySetOf(values), nil
}
