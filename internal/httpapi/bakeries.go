package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/bakery/pkg/types"
)

const (
	msgBakeryNotFound = "Bakery not found"
	msgNoValidFields  = "No valid fields to update"
)

func (s *Server) listBakeries(c *gin.Context) {
	bakeries, err := s.store.ListBakeries(c.Request.Context())
	if err != nil {
		s.fail(c, err, msgBakeryNotFound)
		return
	}
	c.IndentedJSON(http.StatusOK, bakeries)
}

func (s *Server) getBakery(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.IndentedJSON(http.StatusNotFound, errorBody(msgBakeryNotFound))
		return
	}
	bakery, err := s.store.GetBakery(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, msgBakeryNotFound)
		return
	}
	c.IndentedJSON(http.StatusOK, bakery)
}

// updateBakery renames a bakery from a JSON body. The id is checked before
// the body so an unknown bakery is a 404 whatever was sent.
func (s *Server) updateBakery(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseID(c)
	if !ok {
		c.IndentedJSON(http.StatusNotFound, errorBody(msgBakeryNotFound))
		return
	}
	if _, err := s.store.GetBakery(ctx, id); err != nil {
		s.fail(c, err, msgBakeryNotFound)
		return
	}

	name, ok := bodyName(c)
	if !ok {
		c.IndentedJSON(http.StatusBadRequest, errorBody(msgNoValidFields))
		return
	}

	bakery, err := s.store.RenameBakery(ctx, id, name)
	if err != nil {
		if errors.Is(err, types.ErrInvalidName) {
			c.IndentedJSON(http.StatusBadRequest, errorBody(msgNoValidFields))
			return
		}
		s.fail(c, err, msgBakeryNotFound)
		return
	}
	c.IndentedJSON(http.StatusOK, bakery)
}

// bodyName reads the "name" field of a JSON object body. A missing or
// malformed body, or a name that is absent, null, false, zero, empty or not
// a scalar, carries no valid fields. Numbers and true are stored as their
// JSON text.
func bodyName(c *gin.Context) (string, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		return "", false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return "", false
	}

	switch v := body["name"].(type) {
	case string:
		return v, v != ""
	case bool:
		return fmt.Sprint(v), v
	case json.Number:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err == nil && f == 0 {
			return "", false
		}
		return v.String(), true
	default:
		return "", false
	}
}
