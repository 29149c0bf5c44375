package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/specgate/pkg/domain/convergence"
)

// SchemaVersion is the current MCP tool schema version (semver).
const SchemaVersion = "1.0.0"

const schemaURI = "specgate://schema"

type schemaResponse struct {
	SchemaVersion string   `json:"schema_version"`
	ServerVersion string   `json:"server_version"`
	Tools         []string `json:"tools"`
	StopReasons   []string `json:"stop_reasons"`
}

var toolNames = []string{
	"specgate_score", "specgate_enhance", "specgate_gate",
	"specgate_backups", "specgate_restore", "specgate_prune", "specgate_history",
}

func stopReasons() []string {
	return []string{
		string(convergence.ReasonThreshold),
		string(convergence.ReasonPlateau),
		string(convergence.ReasonNoImprovements),
		string(convergence.ReasonMaxIterations),
		string(convergence.ReasonValidationOnly),
		string(convergence.ReasonReadError),
		string(convergence.ReasonWriteError),
		string(convergence.ReasonCanceled),
		string(convergence.ReasonInternal),
	}
}

func schemaDocument() ([]byte, error) {
	return json.Marshal(schemaResponse{
		SchemaVersion: SchemaVersion,
		ServerVersion: Version,
		Tools:         toolNames,
		StopReasons:   stopReasons(),
	})
}

func (s *Server) registerSchemaResource() {
	s.mcpServer.Resource(schemaURI).
		Name(schemaURI).
		Description("Tool schema version and the stopping reasons enhancement results can carry").
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			data, err := schemaDocument()
			if err != nil {
				return nil, err
			}
			return &mcplib.ResourceContent{
				URI:      schemaURI,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})
}
