package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mygads/genfity-order-main-sub002/internal/bulkupload"
	"github.com/mygads/genfity-order-main-sub002/internal/middleware"
	"github.com/mygads/genfity-order-main-sub002/internal/queue"
	"github.com/mygads/genfity-order-main-sub002/internal/upstream"
	"github.com/mygads/genfity-order-main-sub002/pkg/response"
)

// BulkUploadTemplate serves the CSV starting point for the upload form.
func (h *Handler) BulkUploadTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="addon-items-template.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(bulkupload.CSVTemplate()))
}

type bulkUploadJSONRequest struct {
	Rows              []bulkupload.Row `json:"rows"`
	ConfirmDuplicates bool             `json:"confirmDuplicates"`
}

// BulkUpload runs the full reconciliation: parse, validate against the
// category snapshot, match duplicates two ways, then either return the
// report for confirmation or submit the mixed create+update batch.
//
// The endpoint accepts either a multipart CSV file (field "file") or a
// JSON body with pre-parsed rows from the in-page editor.
func (h *Handler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := authToken(r)

	rows, fileName, fileBytes, confirm, err := h.readBulkUploadRequest(r)
	if err != nil {
		if errors.Is(err, bulkupload.ErrNoRows) {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "The file contains no data rows")
			return
		}
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if len(rows) > bulkupload.MaxRows {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("A batch may contain at most %d rows; got %d", bulkupload.MaxRows, len(rows)))
		return
	}

	var categories []upstream.AddonCategory
	if err := h.Queries.Get(ctx, "/api/merchant/addon-categories", token, &categories); err != nil {
		writeUpstreamError(w, err)
		return
	}
	var existing []upstream.AddonItem
	if err := h.Queries.Get(ctx, "/api/merchant/addon-items", token, &existing); err != nil {
		writeUpstreamError(w, err)
		return
	}

	reports := bulkupload.ValidateRows(rows, categories)
	matches := bulkupload.DetectDuplicates(rows, existing)

	if bulkupload.HasBlockingErrors(reports) {
		response.JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success":   false,
			"error":     "VALIDATION_ERROR",
			"message":   "Some rows have errors; fix them and upload again",
			"reports":   reports,
			"submitted": false,
		})
		return
	}

	if len(matches) > 0 && !confirm {
		response.Success(w, map[string]any{
			"reports":              reports,
			"duplicates":           matches,
			"requiresConfirmation": true,
			"submitted":            false,
		})
		return
	}

	batch := bulkupload.BuildBatch(reports, matches, categories)
	payload := map[string]any{
		"items":        batch,
		"upsertByName": true,
	}

	var result struct {
		Created int `json:"createdCount"`
		Updated int `json:"updatedCount"`
	}
	if err := h.Upstream.Do(ctx, http.MethodPost, "/api/merchant/addon-items/bulk-upload", token, payload, &result); err != nil {
		writeUpstreamError(w, err)
		return
	}

	h.Queries.Mutate("/api/merchant/addon-items")

	merchantID := ""
	if authCtx, ok := middleware.GetAuthContext(ctx); ok {
		merchantID = authCtx.MerchantID
	}

	if h.Archive != nil && len(fileBytes) > 0 {
		if key, err := h.Archive.ArchiveBulkUpload(ctx, merchantID, fileName, fileBytes, "text/csv"); err != nil {
			h.Logger.Warn("bulk upload archive failed", zapError(err))
		} else {
			h.Logger.Info("bulk upload archived: " + key)
		}
	}

	if h.Queue != nil {
		event := queue.BulkUploadEvent{
			MerchantID:   merchantID,
			FileName:     fileName,
			CreatedCount: result.Created,
			UpdatedCount: result.Updated,
		}
		if err := h.Queue.PublishBulkUpload(ctx, event); err != nil {
			h.Logger.Warn("bulk upload publish failed", zapError(err))
		}
	}

	response.Success(w, map[string]any{
		"submitted": true,
		"created":   result.Created,
		"updated":   result.Updated,
		"reports":   reports,
	})
}

// readBulkUploadRequest decodes either form of the upload request. Multipart
// requests return the raw file for archiving; JSON requests do not.
func (h *Handler) readBulkUploadRequest(r *http.Request) ([]bulkupload.Row, string, []byte, bool, error) {
	if err := r.ParseMultipartForm(h.Config.MaxUploadSizeBytes); err == nil {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", nil, false, errors.New("file field is required")
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, h.Config.MaxUploadSizeBytes))
		if err != nil {
			return nil, "", nil, false, err
		}

		rows, err := bulkupload.ParseCSV(bytes.NewReader(data))
		if err != nil {
			return nil, "", nil, false, err
		}
		confirm := r.FormValue("confirmDuplicates") == "true"
		return rows, header.Filename, data, confirm, nil
	}

	var body bulkUploadJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, "", nil, false, errors.New("expected a multipart file or a JSON row list")
	}
	if len(body.Rows) == 0 {
		return nil, "", nil, false, bulkupload.ErrNoRows
	}
	return body.Rows, "", nil, body.ConfirmDuplicates, nil
}
