// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the recipe collection as tools over stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/receitas/internal/apperr"
	"github.com/starford/receitas/internal/collection"
	"github.com/starford/receitas/internal/models"
)

// Server wraps the MCP server with recipe tools.
type Server struct {
	mcp  *server.MCPServer
	ctrl *collection.Controller
}

// New creates a new MCP server with all recipe tools registered.
func New(ctrl *collection.Controller, version string) *Server {
	s := &Server{ctrl: ctrl}

	s.mcp = server.NewMCPServer(
		"Receitas",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_recipes",
		mcp.WithDescription("List every recipe in the collection, in display order."),
	), s.listRecipes)

	s.mcp.AddTool(mcp.NewTool("get_recipe",
		mcp.WithDescription("Read one recipe by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Recipe id")),
	), s.getRecipe)

	s.mcp.AddTool(mcp.NewTool("refresh_recipes",
		mcp.WithDescription("Reload the collection from the recipe API."),
	), s.refreshRecipes)

	s.mcp.AddTool(mcp.NewTool("create_recipe",
		append([]mcp.ToolOption{
			mcp.WithDescription("Create a recipe. Read receitas://wire-format for field meanings."),
			mcp.WithString("nome", mcp.Required(), mcp.Description("Recipe name")),
		}, draftParams()...)...,
	), s.createRecipe)

	s.mcp.AddTool(mcp.NewTool("update_recipe",
		append([]mcp.ToolOption{
			mcp.WithDescription("Update a recipe. Omitted fields keep their current value; for a recipe not in the collection they are sent empty."),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Recipe id")),
			mcp.WithString("nome", mcp.Description("Recipe name")),
		}, draftParams()...)...,
	), s.updateRecipe)

	s.mcp.AddTool(mcp.NewTool("delete_recipe",
		mcp.WithDescription("Delete a recipe by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Recipe id")),
	), s.deleteRecipe)

	// Resource: wire format.
	s.mcp.AddResource(
		mcp.NewResource(wireFormatURI, "Recipe Wire Format",
			mcp.WithResourceDescription("Field names and types of a recipe on the wire."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readWireFormatResource,
	)

	return s
}

func draftParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("tipo", mcp.Description("Category, e.g. DOCE, SALGADA, BEBIDA")),
		mcp.WithArray("ingredientes", mcp.WithStringItems(), mcp.Description("Ingredients in order")),
		mcp.WithString("modoFazer", mcp.Description("Preparation instructions")),
		mcp.WithString("img", mcp.Description("Image URL")),
		mcp.WithNumber("custoAproximado", mcp.Description("Approximate cost")),
	}
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listRecipes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.ctrl.Recipes())
}

func (s *Server) getRecipe(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, ok := s.ctrl.Get(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %d", id)), nil
	}
	return jsonResult(rec)
}

func (s *Server) refreshRecipes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.ctrl.Refresh(ctx); err != nil {
		return s.failure(err), nil
	}
	return jsonResult(s.ctrl.Recipes())
}

func (s *Server) createRecipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := req.RequireString("nome"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var d models.Draft
	applyArgs(&d, req)

	rec, err := s.ctrl.Create(ctx, d)
	if err != nil {
		return s.failure(err), nil
	}
	return jsonResult(rec)
}

func (s *Server) updateRecipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// An id missing locally is still sent; the supplied fields make up the
	// whole record.
	var d models.Draft
	if cur, ok := s.ctrl.Get(id); ok {
		d = cur.Draft()
	}
	applyArgs(&d, req)

	rec, err := s.ctrl.Update(ctx, id, d)
	if err != nil {
		return s.failure(err), nil
	}
	return jsonResult(rec)
}

func (s *Server) deleteRecipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.ctrl.Delete(ctx, id); err != nil {
		return s.failure(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %d", id)), nil
}

func (s *Server) readWireFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      wireFormatURI,
			MIMEType: "text/markdown",
			Text:     WireFormat,
		},
	}, nil
}

// applyArgs copies the draft fields present in the request onto d.
func applyArgs(d *models.Draft, req mcp.CallToolRequest) {
	args := req.GetArguments()
	if _, ok := args["nome"]; ok {
		d.Name = req.GetString("nome", "")
	}
	if _, ok := args["tipo"]; ok {
		d.Category = req.GetString("tipo", "")
	}
	if _, ok := args["ingredientes"]; ok {
		d.Ingredients = models.Ingredients(req.GetStringSlice("ingredientes", nil))
	}
	if _, ok := args["modoFazer"]; ok {
		d.Instructions = req.GetString("modoFazer", "")
	}
	if _, ok := args["img"]; ok {
		d.ImageURL = req.GetString("img", "")
	}
	if v, ok := args["custoAproximado"]; ok {
		if v == nil {
			d.ApproximateCost = nil
		} else {
			d.ApproximateCost = models.Cost(req.GetFloat("custoAproximado", 0))
		}
	}
}

// failure turns a controller error into a tool error carrying the message
// the controller recorded for the user.
func (s *Server) failure(err error) *mcp.CallToolResult {
	msg := s.ctrl.PendingError()
	if msg == "" || errors.Is(err, apperr.ErrNotFound) {
		msg = err.Error()
	}
	return mcp.NewToolResultError(msg)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
