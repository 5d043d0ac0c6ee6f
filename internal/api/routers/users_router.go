package routers

import (
	"net/http"

	"sitebooks/internal/api/handlers/auth"
)

func usersRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/users/login", auth.LoginHandler)
	mux.HandleFunc("/users/logout", auth.LogoutHandler)
	mux.HandleFunc("/users/create", auth.CreateUserHandler)
	mux.HandleFunc("/users/updatepassword", auth.UpdatePasswordHandler)

	return mux
}
