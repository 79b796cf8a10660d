// Package handler is the first layer after the router.
//
// It binds and validates requests with the validation package, runs the
// endpoint logic and writes the response. Every error an endpoint returns,
// and every panic it raises, is handed back to Echo so the terminal error
// handler answers the request.
package handler
