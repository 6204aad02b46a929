package api

import (
	"log"
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/marcosgperez/social-media/service/feed"
	"github.com/marcosgperez/social-media/service/gateway"
	"github.com/marcosgperez/social-media/service/upload"
	"github.com/marcosgperez/social-media/service/user"
	"github.com/marcosgperez/social-media/service/ws"
)

type APIServer struct {
	address string
	gw      gateway.Gateway
}

func NewAPIServer(address string, gw gateway.Gateway) *APIServer {
	return &APIServer{
		address: address,
		gw:      gw,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	hub := ws.NewHub()
	go hub.Run()

	userHandler := user.NewHandler(s.gw)
	userHandler.RegisterRoutes(subrouter)

	feedHandler := feed.NewHandler(s.gw, hub)
	feedHandler.RegisterRoutes(subrouter)

	uploadHandler := upload.NewHandler()
	uploadHandler.RegisterRoutes(subrouter)

	router.HandleFunc("/ws/feed", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	fileServer := http.FileServer(http.Dir("uploads/images"))
	router.PathPrefix("/images/").Handler(http.StripPrefix("/images/", fileServer))

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{"*"}),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, cors(router))
}
