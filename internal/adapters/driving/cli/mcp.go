package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfsift/internal/adapters/driving/mcp"
	"github.com/custodia-labs/pdfsift/internal/connectors/filesystem"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp <dir>",
	Short: "Serve search over the Model Context Protocol",
	Long: `Starts an MCP server for the documents under dir. Assistants can call
the search tool to list documents containing a string and the get_text tool
to read a document's cached text.

The server speaks stdio by default; use --http to listen on an address.`,
	Args: cobra.ExactArgs(1),
	RunE: runMCP,
}

func init() {
	addRunFlags(mcpCmd)
	mcpCmd.Flags().String("url-prefix", "", "report matches as URLs under this prefix")
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "listen on this address instead of stdio (e.g. localhost:8080)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	prefix := s.settings.URLPrefix
	server, err := mcp.NewServer(&mcp.Ports{
		Search:    s.engine.Search,
		Cache:     s.engine.Cache,
		Documents: s.connector.Walk,
		Locate: func(doc domain.Document) string {
			return filesystem.ResolveLocation(doc, prefix, false)
		},
	}, version)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if mcpHTTPAddr != "" {
		logger.Info("serving %s over MCP at %s", s.connector.Root(), mcpHTTPAddr)
		err = server.RunHTTP(ctx, mcpHTTPAddr)
	} else {
		err = server.Run(ctx)
	}
	if flushErr := s.flush(ctx); flushErr != nil {
		logger.Error("%v", flushErr)
	}
	if interrupted(err) {
		return nil
	}
	return err
}
