package server

import (
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"resumelens/internal/errors"
	"resumelens/internal/extract"
	"resumelens/internal/types"
	"resumelens/internal/utils"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	resumeField     = "resume"
	multipartMemory = 8 << 20

	msgNoFile           = "No resume file uploaded"
	msgNoFileSelected   = "No file selected"
	msgUnsupportedType  = "Unsupported file type"
	msgExtractionFailed = "Could not extract text from file"
	msgTooLarge         = "File too large"
)

//go:embed static/index.html
var indexPage []byte

// indexHandler serves the upload page
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(indexPage); err != nil {
		s.Logger.LogError(err, "Failed to write index page")
	}
}

// analyzeHandler accepts a multipart upload and returns the analysis result
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Observability.Tracer("resumelens.api").Start(r.Context(), "api.analyze")
	defer span.End()

	doc, status, errMsg, detail := s.readUpload(r)
	if status != http.StatusOK {
		span.SetAttributes(attribute.String("error.type", "validation"))
		span.SetStatus(codes.Error, errMsg)
		writeErrorResponse(w, errMsg, detail, status)
		return
	}

	span.SetAttributes(
		attribute.String("document.format", string(doc.Format)),
		attribute.Int("document.size", len(doc.Data)),
		attribute.String("request.id", RequestID(ctx)),
	)

	result, err := s.Analyzer.AnalyzeDocument(ctx, doc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.Logger.LogError(err, "Analysis failed", "document", doc.Name, "request_id", RequestID(ctx))
		writeAppError(w, err)
		return
	}

	span.SetAttributes(attribute.Int("analysis.score", result.Score))
	writeJSON(w, http.StatusOK, result)
}

// readUpload validates the multipart upload. A non-200 status carries the
// client-facing error and an optional detail message.
func (s *Server) readUpload(r *http.Request) (types.Document, int, string, string) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return types.Document{}, http.StatusBadRequest, msgTooLarge,
				fmt.Sprintf("upload exceeds the limit of %d bytes", maxBytesErr.Limit)
		}
		return types.Document{}, http.StatusBadRequest, msgNoFile, ""
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Printf("Failed to remove multipart temp files: %v", err)
		}
	}()

	file, header, err := r.FormFile(resumeField)
	if err != nil {
		// A part without a filename is parsed as a plain form value
		if _, present := r.MultipartForm.Value[resumeField]; present {
			return types.Document{}, http.StatusBadRequest, msgNoFileSelected, ""
		}
		return types.Document{}, http.StatusBadRequest, msgNoFile, ""
	}
	defer func() { _ = file.Close() }()

	name := strings.TrimSpace(header.Filename)
	if name == "" {
		return types.Document{}, http.StatusBadRequest, msgNoFileSelected, ""
	}

	if !utils.HasAllowedExtension(name, s.AllowedExtensions) {
		return types.Document{}, http.StatusBadRequest, msgUnsupportedType,
			fmt.Sprintf("allowed extensions: %s", strings.Join(s.AllowedExtensions, ", "))
	}
	format, err := extract.FormatFromFilename(name)
	if err != nil {
		return types.Document{}, http.StatusBadRequest, msgUnsupportedType, err.Error()
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return types.Document{}, http.StatusBadRequest, msgExtractionFailed, ""
	}

	return types.Document{Name: filepath.Base(name), Format: format, Data: data}, http.StatusOK, "", ""
}

// healthHandler reports service status, grammar provider state and certificates
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "resumelens",
		"version": s.Version,
	}
	status := http.StatusOK

	if s.Grammar != nil {
		response["grammar"] = s.Grammar.Stats()
		if !s.Grammar.IsHealthy() {
			response["status"] = "degraded"
		}
	}

	if certStatus := s.checkCertificateHealth(); certStatus != nil {
		response["certificates"] = certStatus
		if healthy, _ := certStatus["healthy"].(bool); !healthy {
			response["status"] = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, response)
}

// checkCertificateHealth checks the health of TLS certificates
func (s *Server) checkCertificateHealth() map[string]any {
	if s.CertReloader == nil {
		return nil
	}
	return s.CertReloader.Status()
}

// statsHandler provides server limits and analysis counters
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumelens",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"allowed_extensions":     s.AllowedExtensions,
		},
	}

	if s.Counters != nil {
		response["analysis"] = s.Counters.Snapshot()
	}
	if s.Grammar != nil {
		response["grammar"] = s.Grammar.Stats()
	}

	writeJSON(w, http.StatusOK, response)
}

// writeAppError maps an error to its HTTP status and a safe message
func writeAppError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	appErr, ok := errors.AsAppError(err)
	switch {
	case !ok:
		writeErrorResponse(w, "Internal server error", err.Error(), status)
	case appErr.Type == errors.ErrorTypeExtraction:
		detail := appErr.Message
		if detail == msgExtractionFailed {
			detail = ""
		}
		writeErrorResponse(w, msgExtractionFailed, detail, status)
	default:
		writeErrorResponse(w, appErr.Message, "", status)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: error, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
