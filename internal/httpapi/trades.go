package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kolangkoding.com/tradeledger/internal/identity"
	"kolangkoding.com/tradeledger/internal/trade"
)

const (
	headerAddress   = identity.HeaderAddress
	headerSignature = identity.HeaderSignature

	maxBodyBytes = 64 << 10
)

var errMalformedTradeID = errors.New("trade id must be 32 bytes of 0x-prefixed hex")

type recordResponse struct {
	ID trade.ID `json:"id"`
}

// recordTrade authenticates the caller from the signature over the raw body,
// so the body is read once and both verified and decoded from the same bytes.
func (s *Server) recordTrade(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusRequestEntityTooLarge,
				fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
		return
	}

	caller, err := identity.ParseAddress(c.GetHeader(headerAddress))
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err)
		return
	}
	if err := identity.Verify(body, c.GetHeader(headerSignature), caller); err != nil {
		abortWithError(c, http.StatusUnauthorized, err)
		return
	}

	sub, err := trade.DecodeSubmission(body)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	amount, price, err := sub.Quantities()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	id, err := s.ledger.RecordTrade(c.Request.Context(), caller, sub.Symbol, amount, price, sub.Timestamp)
	switch {
	case errors.Is(err, trade.ErrInvalidAmount), errors.Is(err, trade.ErrInvalidPrice):
		abortWithError(c, http.StatusBadRequest, err)
		return
	case err != nil:
		s.logger.Error("failed to record trade", zap.Stringer("trader", caller), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, errors.New("failed to record trade"))
		return
	}

	c.JSON(http.StatusCreated, recordResponse{ID: id})
}

// getTrade answers unknown identifiers with the zero tuple and 200, the same
// fields Ledger.GetTrade returns for a miss.
func (s *Server) getTrade(c *gin.Context) {
	raw, err := hexutil.Decode(c.Param("id"))
	if err != nil || len(raw) != common.HashLength {
		abortWithError(c, http.StatusBadRequest, errMalformedTradeID)
		return
	}

	id := common.BytesToHash(raw)
	t, ok := s.ledger.Lookup(id)
	if !ok {
		s.logger.Debug("trade not found", zap.Stringer("id", id))
	}
	c.JSON(http.StatusOK, trade.NewSubmission(t.Symbol, t.Amount, t.Price, t.Timestamp))
}

func (s *Server) getTraderTrades(c *gin.Context) {
	trader, err := identity.ParseAddress(c.Param("address"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, s.ledger.GetTraderTrades(trader))
}
