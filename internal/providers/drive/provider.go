package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bitcoin-os/shell/internal/shared/types"
	"github.com/bitcoin-os/shell/internal/shared/utils"
)

// Provider exposes drive metadata operations as the "drive" service.
// Uploads and downloads go through dedicated HTTP routes.
type Provider struct {
	drive *Drive
}

// NewProvider wraps a drive
func NewProvider(d *Drive) *Provider {
	return &Provider{drive: d}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	fileParam := types.Parameter{Name: "file_id", Type: "string", Description: "File ID", Required: true}
	return types.Service{
		ID:           "drive",
		Name:         "Drive",
		Description:  "File storage for bApps",
		Category:     types.CategoryStorage,
		Capabilities: []string{"list", "stat", "delete"},
		Tools: []types.Tool{
			{
				ID:   "drive.list",
				Name: "List Files",
				Parameters: []types.Parameter{
					{Name: "owner", Type: "string", Description: "Filter by owner", Required: false},
				},
				Returns: "array",
			},
			{ID: "drive.stat", Name: "File Info", Parameters: []types.Parameter{fileParam}, Returns: "object"},
			{ID: "drive.delete", Name: "Delete File", Parameters: []types.Parameter{fileParam}, Returns: "boolean"},
		},
	}
}

// Execute runs a drive operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	switch toolID {
	case "drive.list":
		files, err := p.drive.List(ctx, utils.StringParam(params, "owner"))
		if err != nil {
			return nil, err
		}
		return types.Success(map[string]interface{}{"files": files, "count": len(files)})
	case "drive.stat":
		fileID := utils.StringParam(params, "file_id")
		if fileID == "" {
			return types.Failure("file_id required")
		}
		f, err := p.drive.Stat(ctx, fileID)
		if err != nil {
			return fileFailure(err)
		}
		return types.Success(map[string]interface{}{"file": f})
	case "drive.delete":
		fileID := utils.StringParam(params, "file_id")
		if fileID == "" {
			return types.Failure("file_id required")
		}
		if err := p.drive.Delete(ctx, fileID); err != nil {
			return fileFailure(err)
		}
		return types.Success(map[string]interface{}{"deleted": true})
	default:
		return types.Failure(fmt.Sprintf("unknown action: %s", toolID))
	}
}

func fileFailure(err error) (*types.Result, error) {
	if errors.Is(err, ErrFileNotFound) {
		return types.FailureStatus(http.StatusNotFound, err.Error())
	}
	return nil, err
}
