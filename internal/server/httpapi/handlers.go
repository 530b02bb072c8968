package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tenantive/jobboard/internal/server/services"
)

// jobResponse is the wire shape of one catalog entry.
type jobResponse struct {
	ID                      int64  `json:"id"`
	Name                    string `json:"name"`
	Company                 string `json:"company"`
	ExpectedExperienceYears string `json:"expectedExperienceInYears"`
	Locations               string `json:"locations"`
	CreatedTime             string `json:"createdTime"`
	ShortJobDescription     string `json:"shortJobDescription"`
	ShortCompanyDescription string `json:"shortCompanyDescription"`
	FullJobDescription      string `json:"fullJobDescription"`
	IsApplied               bool   `json:"isApplied"`
}

type updateJobRequest struct {
	Applied *bool `json:"applied" binding:"required"`
}

func (s *Server) fetchJobs(c *gin.Context) {
	listings, err := s.jobs.FetchAll(c.Request.Context(), tenantFromContext(c))
	if err != nil {
		status, body := classify(err)
		c.JSON(status, body)
		return
	}

	out := make([]jobResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toJobResponse(l))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) updateJob(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, errInvalidID)
		return
	}

	var req updateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiError{
			Status: strconv.Itoa(http.StatusBadRequest),
			Code:   "4",
			Title:  "Invalid request body",
			Detail: "Expected {\"applied\": bool}.",
		})
		return
	}

	if err := s.jobs.SetApplied(c.Request.Context(), tenantFromContext(c), jobID, *req.Applied); err != nil {
		status, body := classify(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": jobID, "isApplied": *req.Applied})
}

func toJobResponse(l *services.JobListing) jobResponse {
	return jobResponse{
		ID:                      l.Job.ID,
		Name:                    l.Job.Name,
		Company:                 l.Job.Company,
		ExpectedExperienceYears: l.Job.ExpectedExpYears,
		Locations:               l.Job.Locations,
		CreatedTime:             time.UnixMilli(l.Job.CreatedTime).UTC().Format(time.RFC3339),
		ShortJobDescription:     l.Job.ShortJobDesc,
		ShortCompanyDescription: l.Job.ShortCompanyDesc,
		FullJobDescription:      l.Job.FullJobDesc,
		IsApplied:               l.IsApplied,
	}
}
