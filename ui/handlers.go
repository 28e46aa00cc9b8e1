package ui

import (
	stderrors "errors"
	"log"
	"net/http"
	"strings"

	"tabml/adapters/api"
	"tabml/internal/errors"
	"tabml/models"

	"github.com/gin-gonic/gin"
)

// respondError writes the error body with the status its kind maps to
func respondError(c *gin.Context, err error) {
	status, body := api.NewErrorResponse(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, body)
}

func (s *Server) handleTrain(c *gin.Context) {
	var req api.TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidInput("Invalid request body: "+err.Error()))
		return
	}

	result, err := s.services.Training.Train(c.Request.Context(), req.ToDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.NewTrainResponse(req, result))
}

// handleUpload stores a multipart "dataset" file, or echoes a "dataset" form
// value naming a file that is already stored.
func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.Storage.MaxUploadSize+1<<20)

	header, err := c.FormFile("dataset")
	if err != nil {
		if !stderrors.Is(err, http.ErrMissingFile) {
			respondError(c, errors.InvalidInput("Invalid upload: "+err.Error()))
			return
		}
		ref := strings.TrimSpace(c.PostForm("dataset"))
		if ref == "" {
			respondError(c, errors.New(errors.CodeMissingParameter, "No file or dataset reference provided"))
			return
		}
		exists, err := s.services.Store.Exists(c.Request.Context(), ref)
		if err != nil {
			respondError(c, err)
			return
		}
		if !exists {
			respondError(c, errors.NotFound("File"))
			return
		}
		c.JSON(http.StatusOK, api.UploadResponse{Message: "File processed successfully", Filename: ref})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer file.Close()

	stored, err := s.services.Store.Store(c.Request.Context(), file, header.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[API] Stored upload %s as %s (target=%q model=%q)",
		header.Filename, stored, c.PostForm("targetColumn"), c.PostForm("mlModel"))
	c.JSON(http.StatusOK, api.UploadResponse{Message: "File processed successfully", Filename: stored})
}

// handleEDA returns the exploratory report as JSON, or as HTML with format=html
func (s *Server) handleEDA(c *gin.Context) {
	report, err := s.services.EDA.Analyze(c.Request.Context(), c.Query("filename"))
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "html" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML())
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) requireAccounts(c *gin.Context) {
	if s.services.Accounts == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, api.ErrorResponse{
			Error: "Account service not available",
			Code:  "SERVICE_UNAVAILABLE",
		})
		return
	}
	c.Next()
}

func (s *Server) handleSignup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, errors.InvalidInput("Invalid request body: "+err.Error()))
		return
	}

	user, err := s.services.Accounts.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Sign-up successful", ID: user.ID.String()})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, errors.InvalidInput("Invalid request body: "+err.Error()))
		return
	}

	user, err := s.services.Accounts.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Login successful", User: user})
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.services.Accounts.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
