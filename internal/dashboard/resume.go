package dashboard

import (
	"context"
	"io"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/mutation"
	"github.com/MrSnakeDoc/folio/internal/revalidate"
)

// Uploader sends the resume document.
type Uploader interface {
	Upload(ctx context.Context, filename string, file io.Reader) (*apiclient.ResumeUpload, error)
}

// Resume controls the resume upload page.
type Resume struct {
	uploader Uploader
	orch     *mutation.Orchestrator
}

func NewResume(u Uploader, orch *mutation.Orchestrator) *Resume {
	return &Resume{uploader: u, orch: orch}
}

// Upload sends file and returns where the server stored it.
func (r *Resume) Upload(ctx context.Context, filename string, file io.Reader) (*apiclient.ResumeUpload, mutation.Result, error) {
	var uploaded *apiclient.ResumeUpload
	res, err := r.orch.Run(ctx, mutation.Action{
		Key:   "resume:upload:",
		Kind:  mutation.KindUpload,
		Paths: revalidate.AfterResumeUpload(),
		Call: func(ctx context.Context) error {
			var err error
			uploaded, err = r.uploader.Upload(ctx, filename, file)
			return err
		},
		SuccessMessage: "Resume uploaded successfully",
	}, nil)
	return uploaded, res, err
}
