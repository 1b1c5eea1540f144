package controllers

import (
	"net/http"
	"strconv"
	"time"

	"capbot-api/config"
	"capbot-api/services"

	"github.com/gin-gonic/gin"
)

// GetTopicReviewerSuggestions handles GET /topics/:id/reviewer-suggestions
func GetTopicReviewerSuggestions(c *gin.Context) {
	topicID, err := strconv.Atoi(c.Param("id"))
	if err != nil || topicID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid topic ID"})
		return
	}

	maxSuggestions, _ := strconv.Atoi(c.DefaultQuery("max", "5"))
	usePrompt := c.Query("use_prompt") == "true"

	svc := services.NewSuggestionService(config.DB, getMatchingConfig())
	result, err := svc.SuggestForTopic(c.Request.Context(), topicID, maxSuggestions, usePrompt)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type bulkSuggestionRequest struct {
	TopicIDs       []int `json:"topic_ids" binding:"required"`
	MaxSuggestions int   `json:"max_suggestions"`
	UsePrompt      bool  `json:"use_prompt"`
}

// BulkTopicReviewerSuggestions handles POST /reviewer-suggestions/bulk.
// Unresolvable topics are reported per item; the batch never fails.
func BulkTopicReviewerSuggestions(c *gin.Context) {
	var req bulkSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.TopicIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic_ids must not be empty"})
		return
	}
	if req.MaxSuggestions <= 0 {
		req.MaxSuggestions = 5
	}

	svc := services.NewSuggestionService(config.DB, getMatchingConfig())
	items := svc.SuggestForTopics(c.Request.Context(), req.TopicIDs, req.MaxSuggestions, req.UsePrompt)

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetSubmissionReviewerSuggestions handles
// GET /submissions/:id/reviewer-suggestions. With assign_top=true the top
// suggestions are committed immediately and the assignment result is
// returned alongside.
func GetSubmissionReviewerSuggestions(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	maxSuggestions, _ := strconv.Atoi(c.DefaultQuery("max", "5"))
	usePrompt := c.Query("use_prompt") == "true"
	assignTop := c.Query("assign_top") == "true"

	if assignTop {
		userID, ok := getCurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
			return
		}

		req := &services.AutoAssignRequest{
			SubmissionID:       submissionID,
			RequestedReviewers: maxSuggestions,
		}
		if raw := c.Query("deadline"); raw != "" {
			deadline, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline, expected RFC3339"})
				return
			}
			req.Deadline = &deadline
		}

		svc := services.NewAssignmentService(config.DB, getMatchingConfig())
		result, err := svc.AutoAssign(c.Request.Context(), req, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"assignment_result": result})
		return
	}

	svc := services.NewSuggestionService(config.DB, getMatchingConfig())
	result, err := svc.SuggestForSubmission(c.Request.Context(), submissionID, maxSuggestions, usePrompt)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type assignReviewersRequest struct {
	Assignments []services.ReviewerAssignmentInput `json:"assignments" binding:"required"`
}

// AssignReviewers handles POST /submissions/:id/assign-reviewers with an
// explicit reviewer list. Partial success is a 200 with per-entry errors.
func AssignReviewers(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var req assignReviewersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewAssignmentService(config.DB, getMatchingConfig())
	result, err := svc.AssignExplicit(c.Request.Context(), submissionID, userID, req.Assignments)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AutoAssignReviewers handles POST /assignments/auto
func AutoAssignReviewers(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var req services.AutoAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewAssignmentService(config.DB, getMatchingConfig())
	result, err := svc.AutoAssign(c.Request.Context(), &req, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMyAssignments handles GET /assignments/my for the logged-in reviewer
func GetMyAssignments(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	svc := services.NewAssignmentService(config.DB, getMatchingConfig())
	assignments, err := svc.ListForReviewer(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	items := make([]gin.H, 0, len(assignments))
	for i := range assignments {
		a := assignments[i]
		items = append(items, gin.H{
			"assignment":       a,
			"effective_status": a.EffectiveStatus(now),
			"is_overdue":       a.IsOverdue(now),
		})
	}

	c.JSON(http.StatusOK, gin.H{"assignments": items})
}

// GetSubmissionAssignments handles GET /submissions/:id/assignments
func GetSubmissionAssignments(c *gin.Context) {
	submissionID, err := strconv.Atoi(c.Param("id"))
	if err != nil || submissionID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return
	}

	svc := services.NewAssignmentService(config.DB, getMatchingConfig())
	assignments, err := svc.ListForSubmission(submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	items := make([]gin.H, 0, len(assignments))
	for i := range assignments {
		a := assignments[i]
		items = append(items, gin.H{
			"assignment":       a,
			"effective_status": a.EffectiveStatus(now),
			"is_overdue":       a.IsOverdue(now),
		})
	}

	c.JSON(http.StatusOK, gin.H{"assignments": items})
}

// StartAssignment handles POST /assignments/:id/start
func StartAssignment(c *gin.Context) {
	assignmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil || assignmentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	svc := services.NewAssignmentService(config.DB, getMatchingConfig())
	assignment, err := svc.StartReview(c.Request.Context(), assignmentID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

type completeReviewRequest struct {
	Score   *float64 `json:"score" binding:"required"`
	Comment string   `json:"comment"`
}

// CompleteAssignment handles POST /assignments/:id/complete. Works for
// overdue assignments too: a late review still completes.
func CompleteAssignment(c *gin.Context) {
	assignmentID, err := strconv.Atoi(c.Param("id"))
	if err != nil || assignmentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}

	var req completeReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewAssignmentService(config.DB, getMatchingConfig())
	assignment, err := svc.CompleteReview(c.Request.Context(), assignmentID, userID, *req.Score, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}
