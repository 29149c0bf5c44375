package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/specgate/pkg/application"
	"github.com/felixgeelhaar/specgate/pkg/domain/document"
)

// documentFlags are the flags every document command accepts.
type documentFlags struct {
	kind      string
	companion string
	language  string
	json      bool
}

func (f *documentFlags) bind(cmd *cobra.Command, withKind bool) {
	if withKind {
		cmd.Flags().StringVarP(&f.kind, "kind", "k", "", "Document kind (requirements, design, tasks); inferred from the file name when empty")
	}
	cmd.Flags().StringVar(&f.companion, "companion", "", "Requirements document used for design traceability (defaults to requirements.md beside the design)")
	cmd.Flags().StringVar(&f.language, "language", "", "Force the document language (en, zh); detected when empty")
	cmd.Flags().BoolVar(&f.json, "json", false, "Output in JSON format")
}

// request builds an enhancement request for path, resolved against root.
func (f *documentFlags) request(root, path string) (application.EnhanceRequest, error) {
	req := application.EnhanceRequest{Path: absPath(root, path)}
	if f.companion != "" {
		req.CompanionPath = absPath(root, f.companion)
	}
	if f.kind != "" {
		k, err := document.ParseKind(f.kind)
		if err != nil {
			return req, MapError(err)
		}
		req.Kind = k
	}
	if f.language != "" {
		l, err := document.ParseLanguage(f.language)
		if err != nil {
			return req, MapError(err)
		}
		req.Language = l
	}
	return req, nil
}

func absPath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
