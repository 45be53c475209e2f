package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/abistudio/internal/abistore"
	"github.com/Mohsinsiddi/abistudio/internal/contract"
	"github.com/Mohsinsiddi/abistudio/internal/history"
	"github.com/Mohsinsiddi/abistudio/internal/ui"
)

var categoryStatus = map[ui.Category]int{
	ui.CategoryProvider:     http.StatusServiceUnavailable,
	ui.CategoryRejected:     http.StatusForbidden,
	ui.CategoryInput:        http.StatusBadRequest,
	ui.CategoryPrerequisite: http.StatusConflict,
	ui.CategoryLibrary:      http.StatusBadGateway,
}

// fail writes err as {"title","error"} with a status from its category.
func (s *Server) fail(c *gin.Context, err error) {
	cat := ui.Classify(err)
	status := categoryStatus[cat]
	if errors.Is(err, abistore.ErrAbiNotFound) {
		status = http.StatusNotFound
	}
	s.logger.Debug("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(status, gin.H{"title": cat.Title(), "error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"title": ui.CategoryInput.Title(), "error": err.Error()})
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Status())
}

// --- wallet ---

func (s *Server) connectWallet(c *gin.Context) {
	account, err := s.session.Connect(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account, "status": s.session.Status()})
}

func (s *Server) disconnectWallet(c *gin.Context) {
	if err := s.session.Disconnect(); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.session.Status())
}

type switchChainRequest struct {
	ChainID int64 `json:"chainId" binding:"required"`
}

func (s *Server) switchChain(c *gin.Context) {
	var req switchChainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.session.SwitchChain(c.Request.Context(), req.ChainID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.session.Status())
}

// --- saved ABIs ---

func (s *Server) listABIs(c *gin.Context) {
	names, err := s.session.ABIs.GetSavedAbisList()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"abis": names, "active": s.session.ActiveABI()})
}

type saveABIRequest struct {
	Name string          `json:"name"`
	ABI  json.RawMessage `json:"abi"`
}

// abiText accepts the ABI as a JSON string holding the text or as the JSON
// document itself.
func abiText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}

func (s *Server) saveABI(c *gin.Context) {
	var req saveABIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	text := abiText(req.ABI)
	if err := s.session.ABIs.SaveAbi(req.Name, text); err != nil {
		s.fail(c, err)
		return
	}
	resp := gin.H{"name": req.Name}
	if err := abistore.ValidateAbi(text); err != nil {
		resp["warning"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getABI(c *gin.Context) {
	name := c.Param("name")
	text, err := s.session.ABIs.GetAbiByName(name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "abi": text})
}

func (s *Server) deleteABI(c *gin.Context) {
	if err := s.session.ABIs.DeleteAbi(c.Param("name")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- contract ---

type setContractRequest struct {
	Address string          `json:"address"`
	ABIName string          `json:"abiName"`
	ABI     json.RawMessage `json:"abi"`
}

func (s *Server) getContract(c *gin.Context) {
	st := s.session.Status()
	c.JSON(http.StatusOK, gin.H{
		"address":  st.Address,
		"abi":      st.ABI,
		"ready":    st.Ready,
		"canWrite": st.CanWrite,
	})
}

func (s *Server) setContract(c *gin.Context) {
	var req setContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var err error
	switch {
	case req.ABIName != "":
		err = s.session.UseABI(req.ABIName)
	case len(req.ABI) > 0:
		err = s.session.LoadABI(abiText(req.ABI))
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	if req.Address != "" {
		if err := s.session.SetAddress(c.Request.Context(), req.Address); err != nil {
			s.fail(c, err)
			return
		}
	}
	s.getContract(c)
}

func (s *Server) listFunctions(c *gin.Context) {
	reads, writes := ui.GroupFunctions(s.session.Functions())
	if reads == nil {
		reads = []contract.FunctionDescriptor{}
	}
	if writes == nil {
		writes = []contract.FunctionDescriptor{}
	}
	c.JSON(http.StatusOK, gin.H{"read": reads, "write": writes})
}

type callRequest struct {
	Function string `json:"function" binding:"required"`
	Params   []any  `json:"params"`
	Value    string `json:"value"`
	GasLimit uint64 `json:"gasLimit"`
}

// callFunction blocks until the call returns; write calls wait for mining
// unless the client goes away first. Numeric params are kept as json.Number
// so uint256 values are not rounded through float64.
func (s *Server) callFunction(c *gin.Context) {
	var req callRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Params == nil {
		req.Params = []any{}
	}
	res, err := s.session.Call(c.Request.Context(), req.Function, req.Params, contract.CallOptions{
		Value:    req.Value,
		GasLimit: req.GasLimit,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// --- history ---

func (s *Server) listHistory(c *gin.Context) {
	var (
		entries []history.Entry
		err     error
	)
	switch {
	case c.Query("address") != "":
		entries, err = s.session.History.FilterByAddress(c.Query("address"))
	case c.Query("function") != "":
		entries, err = s.session.History.FilterByFunction(c.Query("function"))
	case c.Query("limit") != "":
		n, convErr := strconv.Atoi(c.Query("limit"))
		if convErr != nil {
			badRequest(c, convErr)
			return
		}
		entries, err = s.session.History.GetRecentHistory(n)
	default:
		entries, err = s.session.History.GetHistory()
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

func (s *Server) clearHistory(c *gin.Context) {
	if err := s.session.History.ClearHistory(); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteHistoryItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, err)
		return
	}
	ok, err := s.session.History.DeleteHistoryItem(index)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"title": ui.CategoryInput.Title(), "error": "no history entry at index " + c.Param("index")})
		return
	}
	c.Status(http.StatusNoContent)
}
