package api

import (
	"net/http"

	"reelsmith/internal/content"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	records, err := s.deps.Records.List(r.Context())
	if err != nil {
		logging.WithContext(r.Context(), s.logger).Error("list content records failed",
			logging.String(logging.FieldEventType, "records_list_failed"),
			logging.Error(err),
		)
		s.writeError(w, http.StatusInternalServerError, errorServer, "")
		return
	}
	if records == nil {
		records = []content.Record{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := s.runContext()
	if rid, ok := services.RequestIDFromContext(r.Context()); ok {
		ctx = services.WithRequestID(ctx, rid)
	}
	logger := logging.WithContext(ctx, s.logger)

	if _, err := s.deps.Runner.Run(ctx); err != nil {
		logger.Warn("generation request failed",
			logging.String(logging.FieldEventType, "generate_failed"),
			logging.String("error_kind", services.Kind(err)),
			logging.String(logging.FieldImpact, "no video was published"),
			logging.Error(err),
		)
		s.writeError(w, http.StatusInternalServerError, errorGenerationFailed, services.Kind(err))
		return
	}

	latest, ok, err := content.Latest(ctx, s.deps.Records)
	if err != nil || !ok {
		logger.Warn("latest record lookup failed after generation",
			logging.String(logging.FieldEventType, "latest_lookup_failed"),
			logging.Bool("found", ok),
			logging.Error(err),
		)
		s.writeJSON(w, http.StatusOK, GenerateResponse{Message: messageMetadataFailed})
		return
	}
	s.writeJSON(w, http.StatusOK, GenerateResponse{Message: messageGenerated, Video: &latest})
}
