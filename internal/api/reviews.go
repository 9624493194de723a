package api

import (
	"net/http"
	"time"

	"catering/internal/auth"
	"catering/internal/events"
	"catering/internal/logger"
	"catering/internal/models"

	"github.com/gin-gonic/gin"
)

type reviewRequest struct {
	FullName    string `json:"full_name"`
	ReviewText  string `json:"review_text"`
	Rating      *int   `json:"rating"`
	MenuItemIDs []uint `json:"menu_item_ids"`
}

// PublicReviews lists approved reviews with the dishes they mention
func (s *Server) PublicReviews(c *gin.Context) {
	reviews, err := s.store.ListReviews(c.Request.Context(), models.ReviewApproved)
	if err != nil {
		s.fail(c, "load reviews", err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// SubmitReview stores a review for moderation
func (s *Server) SubmitReview(c *gin.Context) {
	var req reviewRequest
	if err := bindJSON(c, &req); err != nil {
		s.fail(c, "submit review", err)
		return
	}

	review := &models.Review{
		FullName:   req.FullName,
		ReviewText: req.ReviewText,
		Rating:     req.Rating,
	}
	if err := s.store.CreateReview(c.Request.Context(), review, req.MenuItemIDs); err != nil {
		s.fail(c, "submit review", err)
		return
	}

	s.metrics.RecordReview(string(review.Status))
	s.monitor.RecordActivity("review", "submitted", map[string]interface{}{"id": review.ID})
	requestID := logger.RequestID(c.Request.Context())
	s.publish(c, events.Event{
		Type:      events.ReviewSubmitted,
		ReviewID:  review.ID,
		RequestID: requestID,
		At:        time.Now().UTC(),
	})
	c.JSON(http.StatusCreated, gin.H{
		"message": "Thank you! Your review will appear once approved.",
		"review":  review,
	})
}

func (s *Server) ListReviews(c *gin.Context) {
	status := models.ReviewStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown review status " + string(status)})
		return
	}
	reviews, err := s.store.ListReviews(c.Request.Context(), status)
	if err != nil {
		s.fail(c, "load reviews", err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (s *Server) ApproveReview(c *gin.Context) {
	s.moderate(c, models.ReviewApproved)
}

func (s *Server) RejectReview(c *gin.Context) {
	s.moderate(c, models.ReviewRejected)
}

func (s *Server) moderate(c *gin.Context, status models.ReviewStatus) {
	action := "moderate review"
	id, err := idParam(c)
	if err != nil {
		s.fail(c, action, err)
		return
	}
	review, err := s.store.SetReviewStatus(c.Request.Context(), id, status, auth.Subject(c), s.now().UTC())
	if err != nil {
		s.fail(c, action, err)
		return
	}
	s.metrics.RecordReview(string(status))
	s.log.Info(logger.RequestID(c.Request.Context()), "review_moderated",
		"review "+c.Param("id")+" "+string(status)+" by "+review.ReviewedBy)
	c.JSON(http.StatusOK, review)
}

func (s *Server) DeleteReview(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, "delete review", err)
		return
	}
	if err := s.store.DeleteReview(c.Request.Context(), id); err != nil {
		s.fail(c, "delete review", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
