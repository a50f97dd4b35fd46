package httpapi

import (
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/dmitrijs2005/gophdiary/internal/server/services"
	"github.com/gin-gonic/gin"
)

const invalidBody = "invalid request body"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (s *HTTPServer) health(c *gin.Context) {
	if s.services.DB != nil {
		if err := s.services.DB.PingContext(c.Request.Context()); err != nil {
			s.logger.Error(c.Request.Context(), "health check failed", "error", err)
			fail(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	success(c, "ok", gin.H{"status": "ok"})
}

func (s *HTTPServer) register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, invalidBody)
		return
	}

	res, err := s.services.Users.Register(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "username", req.Username)
	success(c, "registered", res)
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, invalidBody)
		return
	}

	res, err := s.services.Users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	success(c, "logged in", res)
}

func (s *HTTPServer) getUserInfo(c *gin.Context) {
	p, err := s.services.Users.GetProfile(c.Request.Context(), ownerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, "ok", p)
}

func (s *HTTPServer) updateUserInfo(c *gin.Context) {
	var patch models.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, invalidBody)
		return
	}

	p, err := s.services.Users.UpdateProfile(c.Request.Context(), ownerID(c), patch)
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, "profile updated", p)
}

func (s *HTTPServer) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, invalidBody)
		return
	}

	if err := s.services.Users.ChangePassword(c.Request.Context(), ownerID(c), req.OldPassword, req.NewPassword); err != nil {
		s.writeError(c, err)
		return
	}
	success(c, "password changed", nil)
}

func (s *HTTPServer) saveDiary(c *gin.Context) {
	var req services.SaveInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, invalidBody)
		return
	}

	entry, err := s.services.Diaries.Save(c.Request.Context(), ownerID(c), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	message := "diary saved"
	if !entry.CreatedAt.Equal(entry.UpdatedAt) {
		message = "diary updated"
	}
	success(c, message, entry)
}

func (s *HTTPServer) getDiary(c *gin.Context) {
	entry, err := s.services.Diaries.Get(c.Request.Context(), ownerID(c), c.Param("date"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, "ok", entry)
}

func (s *HTTPServer) listDiaries(c *gin.Context) {
	filter, err := services.ParseMonthFilter(c.Query("year"), c.Query("month"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	entries, err := s.services.Diaries.List(c.Request.Context(), ownerID(c), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, "ok", entries)
}

func (s *HTTPServer) searchDiaries(c *gin.Context) {
	entries, err := s.services.Diaries.Search(c.Request.Context(), ownerID(c), c.Query("keyword"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, "ok", entries)
}

func (s *HTTPServer) deleteDiary(c *gin.Context) {
	if err := s.services.Diaries.Delete(c.Request.Context(), ownerID(c), c.Param("date")); err != nil {
		s.writeError(c, err)
		return
	}
	success(c, "diary deleted", nil)
}

func (s *HTTPServer) stats(c *gin.Context) {
	st, err := s.services.Stats.Stats(c.Request.Context(), ownerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, "ok", st)
}

func (s *HTTPServer) uploadSingle(c *gin.Context) {
	if !s.limitBody(c) {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		s.writeError(c, common.Validation("no file uploaded"))
		return
	}

	in, closeFn, err := openUpload(fh)
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer closeFn()

	up, err := s.services.Uploads.Upload(c.Request.Context(), ownerID(c), in)
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, "uploaded", up)
}

func (s *HTTPServer) uploadMultiple(c *gin.Context) {
	if !s.limitBody(c) {
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		s.writeError(c, common.Validation("no file uploaded"))
		return
	}

	var inputs []services.FileInput
	for _, fh := range form.File["files"] {
		in, closeFn, err := openUpload(fh)
		if err != nil {
			s.writeError(c, err)
			return
		}
		defer closeFn()
		inputs = append(inputs, in)
	}

	ups, err := s.services.Uploads.UploadMany(c.Request.Context(), ownerID(c), inputs)
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, "uploaded", ups)
}

// limitBody caps the request body so oversized uploads fail early.
func (s *HTTPServer) limitBody(c *gin.Context) bool {
	if s.maxUploadBytes <= 0 {
		return true
	}
	// Multipart framing and several files share one body.
	limit := s.maxUploadBytes*10 + 1<<20
	if c.Request.ContentLength > limit {
		s.writeError(c, common.Validation("request body too large"))
		return false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	return true
}

func openUpload(fh *multipart.FileHeader) (services.FileInput, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return services.FileInput{}, nil, common.Validation("cannot read uploaded file")
	}
	return services.FileInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
