package router

import (
	"net/http"

	"github.com/senyabanana/procurement-service/internal/handlers"
)

func InitRoutes(userHandler *handlers.UserHandler, tenderHandler *handlers.TenderHandler, submissionHandler *handlers.SubmissionHandler, notificationHandler *handlers.NotificationHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", handlers.PingHandler)

	mux.HandleFunc("POST /api/users/new", userHandler.CreateUser)
	mux.HandleFunc("GET /api/users/{userId}", userHandler.GetUser)

	mux.HandleFunc("POST /api/tenders/new", tenderHandler.CreateTender)
	mux.HandleFunc("GET /api/tenders", tenderHandler.GetTenders)
	mux.HandleFunc("GET /api/tenders/my", tenderHandler.GetUserTenders)
	mux.HandleFunc("GET /api/tenders/stats", tenderHandler.GetTenderStatistics)
	mux.HandleFunc("GET /api/tenders/{tenderId}", tenderHandler.GetTender)
	mux.HandleFunc("GET /api/tenders/{tenderId}/status", tenderHandler.GetTenderStatus)
	mux.HandleFunc("PUT /api/tenders/{tenderId}/publish", tenderHandler.PublishTender)
	mux.HandleFunc("PUT /api/tenders/{tenderId}/close", tenderHandler.CloseTender)
	mux.HandleFunc("PATCH /api/tenders/{tenderId}/edit", tenderHandler.EditTender)
	mux.HandleFunc("DELETE /api/tenders/{tenderId}", tenderHandler.DeleteTender)

	mux.HandleFunc("POST /api/submissions/new", submissionHandler.CreateSubmission)
	mux.HandleFunc("GET /api/submissions/my", submissionHandler.GetSupplierSubmissions)
	mux.HandleFunc("GET /api/submissions/{tenderId}/list", submissionHandler.GetTenderSubmissions)
	mux.HandleFunc("GET /api/submissions/{submissionId}/status", submissionHandler.GetSubmissionStatus)
	mux.HandleFunc("PUT /api/submissions/{submissionId}/evaluate", submissionHandler.EvaluateSubmission)
	mux.HandleFunc("PUT /api/submissions/{submissionId}/accept", submissionHandler.AcceptSubmission)
	mux.HandleFunc("PUT /api/submissions/{submissionId}/reject", submissionHandler.RejectSubmission)
	mux.HandleFunc("PUT /api/submissions/{submissionId}/select_winner", submissionHandler.SelectWinner)

	mux.HandleFunc("GET /api/notifications", notificationHandler.GetUserNotifications)
	mux.HandleFunc("GET /api/notifications/unread_count", notificationHandler.GetUnreadCount)
	mux.HandleFunc("PUT /api/notifications/{notificationId}/read", notificationHandler.MarkAsRead)
	mux.HandleFunc("PUT /api/notifications/read_all", notificationHandler.MarkAllAsRead)

	return mux
}
