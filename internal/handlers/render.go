package handlers

import (
	"encoding/gob"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const flashSession = "flash"

// FlashMessage survives one redirect inside the flash cookie.
type FlashMessage struct {
	Type    string
	Message string
}

func init() {
	gob.Register(FlashMessage{})
}

func addFlash(store *sessions.CookieStore, c *gin.Context, kind, message string) {
	session, _ := store.Get(c.Request, flashSession)
	session.AddFlash(FlashMessage{Type: kind, Message: message})
	if err := session.Save(c.Request, c.Writer); err != nil {
		log.Printf("failed to save flash session: %v", err)
	}
}

// takeFlashes drains queued messages so they render exactly once.
func takeFlashes(store *sessions.CookieStore, c *gin.Context) []FlashMessage {
	session, _ := store.Get(c.Request, flashSession)
	flashes := session.Flashes()
	if err := session.Save(c.Request, c.Writer); err != nil {
		log.Printf("failed to save flash session: %v", err)
	}
	var messages []FlashMessage
	for _, f := range flashes {
		if fm, ok := f.(FlashMessage); ok {
			messages = append(messages, fm)
		}
	}
	return messages
}

func serverError(c *gin.Context, err error) {
	log.Printf("server error on %s: %v", c.Request.URL.Path, err)
	c.String(http.StatusInternalServerError, "internal server error")
	c.Abort()
}

func notFound(c *gin.Context, what string) {
	c.String(http.StatusNotFound, "%s not found", what)
	c.Abort()
}
