// Package adminhttp exposes the Admin Operations (ListQueues, GetStats,
// DeleteQueue, DeleteCrawl) over HTTP, the same gorilla/mux route-table
// plus unrolled/render JSON-reply shape the original walker console used
// for its own REST surface (console/rest.go's RestRoutes/Render.JSON),
// trimmed to this package's read-and-delete admin scope: there is no
// session-backed HTML console here, since nothing in this core needs a
// browser UI or per-user flash messages.
package adminhttp

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/unrolled/render"

	"github.com/MattiSG/url-frontier"
)

// Server wires a *frontier.Frontier into an http.Handler exposing the
// admin operations as JSON endpoints.
type Server struct {
	frontier *frontier.Frontier
	render   *render.Render
	router   *mux.Router
}

// New builds a Server around f. The returned Server is an http.Handler,
// ready to be passed to http.ListenAndServe or an httptest.Server.
func New(f *frontier.Frontier) *Server {
	s := &Server{
		frontier: f,
		render:   render.New(render.Options{IndentJSON: true}),
	}
	s.router = mux.NewRouter()
	s.router.HandleFunc("/queues", s.listQueues).Methods("GET")
	s.router.HandleFunc("/stats", s.getStats).Methods("GET")
	s.router.HandleFunc("/stats/{crawlID}/{queue}", s.getStats).Methods("GET")
	s.router.HandleFunc("/queues/{crawlID}/{queue}", s.deleteQueue).Methods("DELETE")
	s.router.HandleFunc("/crawls/{crawlID}", s.deleteCrawl).Methods("DELETE")
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

type errorResponse struct {
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func (s *Server) replyError(w http.ResponseWriter, status int, tag string, err error) {
	s.render.JSON(w, status, errorResponse{Tag: tag, Message: err.Error()})
}

type queueJSON struct {
	CrawlID string `json:"crawlId"`
	Queue   string `json:"queue"`
}

func toQueueJSON(q frontier.QueueWithinCrawl) queueJSON {
	return queueJSON{CrawlID: q.CrawlID, Queue: q.Queue}
}

// listQueues handles GET /queues?max=N, returning up to N currently
// dispatchable queues (all of them when max is absent or not a
// positive integer).
func (s *Server) listQueues(w http.ResponseWriter, req *http.Request) {
	max := 0
	if v := req.URL.Query().Get("max"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			max = n
		}
	}

	queues, err := s.frontier.ListQueues(req.Context(), max)
	if err != nil {
		s.replyError(w, http.StatusInternalServerError, "list-queues-failed", err)
		return
	}
	out := make([]queueJSON, len(queues))
	for i, q := range queues {
		out[i] = toQueueJSON(q)
	}
	s.render.JSON(w, http.StatusOK, out)
}

// getStats handles GET /stats (global) and GET /stats/{crawlID}/{queue}
// (single queue).
func (s *Server) getStats(w http.ResponseWriter, req *http.Request) {
	q, hasQueue, err := queueFromVars(req)
	if err != nil {
		s.replyError(w, http.StatusBadRequest, "bad-queue", err)
		return
	}

	var target *frontier.QueueWithinCrawl
	if hasQueue {
		target = &q
	}
	stats, err := s.frontier.GetStats(req.Context(), target)
	if err != nil {
		s.replyError(w, http.StatusInternalServerError, "get-stats-failed", err)
		return
	}
	s.render.JSON(w, http.StatusOK, stats)
}

// deleteQueue handles DELETE /queues/{crawlID}/{queue}.
func (s *Server) deleteQueue(w http.ResponseWriter, req *http.Request) {
	q, _, err := queueFromVars(req)
	if err != nil {
		s.replyError(w, http.StatusBadRequest, "bad-queue", err)
		return
	}
	removed, err := s.frontier.DeleteQueue(req.Context(), q)
	if err != nil {
		s.replyError(w, http.StatusInternalServerError, "delete-queue-failed", err)
		return
	}
	s.render.JSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

// deleteCrawl handles DELETE /crawls/{crawlID}.
func (s *Server) deleteCrawl(w http.ResponseWriter, req *http.Request) {
	crawlID := mux.Vars(req)["crawlID"]
	removed, err := s.frontier.DeleteCrawl(req.Context(), crawlID)
	if err != nil {
		s.replyError(w, http.StatusInternalServerError, "delete-crawl-failed", err)
		return
	}
	s.render.JSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func queueFromVars(req *http.Request) (q frontier.QueueWithinCrawl, ok bool, err error) {
	vars := mux.Vars(req)
	crawlID, hasCrawl := vars["crawlID"]
	queue, hasQueue := vars["queue"]
	if !hasCrawl || !hasQueue {
		return q, false, nil
	}
	return frontier.QueueWithinCrawl{CrawlID: frontier.NormalizeCrawlID(crawlID), Queue: queue}, true, nil
}
