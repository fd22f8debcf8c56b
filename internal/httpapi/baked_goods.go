package httpapi

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mesh-intelligence/bakery/pkg/types"
)

const (
	msgBakedGoodNotFound = "Baked good not found"
	msgNoBakedGoods      = "No baked goods found"
	msgBakedGoodDeleted  = "Baked good deleted successfully"
)

func (s *Server) bakedGoodsByPrice(c *gin.Context) {
	goods, err := s.store.ListBakedGoodsByPrice(c.Request.Context())
	if err != nil {
		s.fail(c, err, msgNoBakedGoods)
		return
	}
	c.IndentedJSON(http.StatusOK, goods)
}

func (s *Server) mostExpensiveBakedGood(c *gin.Context) {
	good, err := s.store.MostExpensiveBakedGood(c.Request.Context())
	if err != nil {
		s.fail(c, err, msgNoBakedGoods)
		return
	}
	c.IndentedJSON(http.StatusOK, good)
}

// createBakedGood reads name, price and bakery_id from a form body.
func (s *Server) createBakedGood(c *gin.Context) {
	form := make(map[string]string, 3)
	for _, field := range []string{"name", "price", "bakery_id"} {
		v, ok := c.GetPostForm(field)
		if !ok {
			c.IndentedJSON(http.StatusBadRequest, errorBody(fmt.Sprintf("Missing form field: %s", field)))
			return
		}
		form[field] = v
	}

	price, err := strconv.ParseFloat(form["price"], 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		c.IndentedJSON(http.StatusBadRequest, errorBody("Invalid price"))
		return
	}
	bakeryID, err := strconv.ParseInt(form["bakery_id"], 10, 64)
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, errorBody("Invalid bakery_id"))
		return
	}

	good, err := s.store.CreateBakedGood(c.Request.Context(), types.BakedGood{
		Name:     form["name"],
		Price:    price,
		BakeryID: bakeryID,
	})
	switch {
	case errors.Is(err, types.ErrBakeryNotFound):
		c.IndentedJSON(http.StatusBadRequest, errorBody(msgBakeryNotFound))
		return
	case errors.Is(err, types.ErrInvalidName):
		c.IndentedJSON(http.StatusBadRequest, errorBody("Invalid name"))
		return
	case err != nil:
		s.fail(c, err, msgBakedGoodNotFound)
		return
	}
	c.IndentedJSON(http.StatusCreated, good)
}

func (s *Server) deleteBakedGood(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.IndentedJSON(http.StatusNotFound, errorBody(msgBakedGoodNotFound))
		return
	}
	if err := s.store.DeleteBakedGood(c.Request.Context(), id); err != nil {
		s.fail(c, err, msgBakedGoodNotFound)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": msgBakedGoodDeleted})
}
