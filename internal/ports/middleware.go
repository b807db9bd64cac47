package ports

import (
	"errors"
	"time"

	e "github.com/Amund211/eventlight/internal/errors"
	"github.com/Amund211/eventlight/internal/logging"
	"github.com/Amund211/eventlight/internal/reporting"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type RunE func(cmd *cobra.Command, args []string) error

type Middleware func(next RunE) RunE

func ComposeMiddlewares(middlewares ...Middleware) Middleware {
	if len(middlewares) == 1 {
		return middlewares[0]
	}
	first := middlewares[0]
	rest := ComposeMiddlewares(middlewares[1:]...)
	return func(h RunE) RunE {
		return first(rest(h))
	}
}

// buildContextMiddleware tags the logger and error reports with the command being run
func buildContextMiddleware(nowFunc func() time.Time) Middleware {
	return func(next RunE) RunE {
		return func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runID := uuid.NewString()
			ctx = logging.AddCommandToContext(ctx, cmd.CommandPath(), runID)
			ctx = reporting.AddCommandToContext(ctx, cmd.CommandPath(), runID, nowFunc())
			cmd.SetContext(ctx)

			logger := logging.FromContext(ctx)
			logger.InfoContext(ctx, "Running command")

			err := next(cmd, args)
			switch {
			case err == nil:
				logger.InfoContext(ctx, "Command finished")
			case errors.Is(err, ErrViewFailed), e.IsAborted(err):
				logger.InfoContext(ctx, "Command did not complete", "error", err.Error())
			default:
				logger.WarnContext(ctx, "Command failed", "error", err.Error())
			}
			return err
		}
	}
}
