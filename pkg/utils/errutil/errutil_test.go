package errutil_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/neonzero/OpenERM/pkg/utils/errutil"
	"github.com/neonzero/OpenERM/pkg/utils/logging"
)

func TestHandle(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.With(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	err := goerr.New("boom", goerr.V("tenant_id", "acme"))
	gt.Error(t, errutil.Handle(ctx, err, "operation failed")).Is(err)
	gt.String(t, buf.String()).Contains("operation failed")
	gt.String(t, buf.String()).Contains("acme")

	gt.NoError(t, errutil.Handle(ctx, nil, "ignored"))
}

func TestHandleHTTP(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, goerr.New("risk not found"), http.StatusNotFound)

	gt.Value(t, w.Code).Equal(http.StatusNotFound)
	gt.String(t, w.Body.String()).Contains("risk not found")
}
