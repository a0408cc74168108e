package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rawblock/kieswet-engine/internal/apportionment"
	"github.com/rawblock/kieswet-engine/internal/dataentry"
	"github.com/rawblock/kieswet-engine/internal/domain"
	"github.com/rawblock/kieswet-engine/internal/nomination"
	"github.com/rawblock/kieswet-engine/internal/reporting"
	"github.com/rawblock/kieswet-engine/internal/store"
	"github.com/rawblock/kieswet-engine/internal/validation"
)

const requestTimeout = 10 * time.Second

// ── Elections ──────────────────────────────────────────────────────────

type createElectionRequest struct {
	NumberOfSeats   int                     `json:"numberOfSeats"`
	NumberOfVoters  int                     `json:"numberOfVoters"`
	PoliticalGroups []domain.PoliticalGroup `json:"politicalGroups"`
}

func (h *APIHandler) handleCreateElection(c *gin.Context) {
	var req createElectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	election := domain.Election{
		ID:              domain.NewElectionID(),
		NumberOfSeats:   req.NumberOfSeats,
		NumberOfVoters:  req.NumberOfVoters,
		PoliticalGroups: req.PoliticalGroups,
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	if err := h.store.SaveElection(ctx, election); err != nil {
		log.Printf("failed to save election: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save election"})
		return
	}

	c.JSON(http.StatusCreated, election)
}

func (h *APIHandler) handleGetElection(c *gin.Context) {
	electionID, err := domain.ParseElectionID(c.Param("electionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid election id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	election, found, err := h.store.LoadElection(ctx, electionID)
	if err != nil {
		log.Printf("failed to load election %s: %v", electionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load election"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "election not found"})
		return
	}
	c.JSON(http.StatusOK, election)
}

// ── Data entry status ─────────────────────────────────────────────────

type stationStatusView struct {
	StationID domain.PollingStationID    `json:"stationId"`
	Kind      domain.DataEntryStatusKind `json:"kind"`
}

func (h *APIHandler) handleGetStatus(c *gin.Context) {
	electionID, err := domain.ParseElectionID(c.Param("electionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid election id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	statuses, err := h.store.ListStationStatuses(ctx, electionID)
	if err != nil {
		log.Printf("failed to list station statuses for election %s: %v", electionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list station statuses"})
		return
	}

	out := make([]stationStatusView, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, stationStatusView{StationID: s.StationID, Kind: s.Status.Kind})
	}
	c.JSON(http.StatusOK, gin.H{"stations": out})
}

// ── Data entry transitions ────────────────────────────────────────────

// entryOperation names the internal/dataentry transition an /entries POST
// dispatches to, carried in the request body's "operation" field.
type entryOperation string

const (
	opClaimFirst    entryOperation = "claim_first"
	opUpdateFirst   entryOperation = "update_first"
	opFinaliseFirst entryOperation = "finalise_first"
	opDeleteFirst   entryOperation = "delete_first"
	opResumeFirst   entryOperation = "resume_first"
	opDiscardFirst  entryOperation = "discard_first"

	opClaimSecond    entryOperation = "claim_second"
	opUpdateSecond   entryOperation = "update_second"
	opFinaliseSecond entryOperation = "finalise_second"
	opDeleteSecond   entryOperation = "delete_second"

	opKeepFirst   entryOperation = "keep_first"
	opKeepSecond  entryOperation = "keep_second"
	opDiscardBoth entryOperation = "discard_both"
)

type entryRequest struct {
	Operation   entryOperation                `json:"operation"`
	UserID      domain.UserID                 `json:"userId"`
	Entry       *domain.PollingStationResults `json:"entry,omitempty"`
	Progress    int                           `json:"progress,omitempty"`
	ClientState domain.ClientState            `json:"clientState,omitempty"`
}

func (r entryRequest) currentEntry() dataentry.CurrentEntry {
	var entry domain.PollingStationResults
	if r.Entry != nil {
		entry = *r.Entry
	}
	return dataentry.CurrentEntry{
		UserID:      r.UserID,
		Entry:       entry,
		Progress:    r.Progress,
		ClientState: r.ClientState,
	}
}

// handleEntries dispatches a single data-entry transition: the whole
// seven-state machine (§4.3) is exposed through this one endpoint, with
// "operation" selecting which dataentry function to call. Every
// operation is a direct call into internal/dataentry plus persistence and
// a WebSocket broadcast; it adds no election-law semantics of its own.
func (h *APIHandler) handleEntries(c *gin.Context) {
	electionID, err := domain.ParseElectionID(c.Param("electionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid election id"})
		return
	}
	stationID, err := domain.ParsePollingStationID(c.Param("stationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid station id"})
		return
	}

	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	current, _, err := h.store.LoadEntryStatus(ctx, electionID, stationID)
	if err != nil {
		log.Printf("failed to load entry status for %s/%s: %v", electionID, stationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load entry status"})
		return
	}

	election, electionFound, err := h.store.LoadElection(ctx, electionID)
	if electionRequiresValidation(req.Operation) {
		if err != nil {
			log.Printf("failed to load election %s: %v", electionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load election"})
			return
		}
		if !electionFound {
			c.JSON(http.StatusBadRequest, gin.H{"error": "election not registered"})
			return
		}
	}

	next, result, diffs, err := applyOperation(req, current, election)
	if err != nil {
		h.respondTransitionError(c, err, current)
		return
	}

	if err := h.store.SaveEntryStatus(ctx, electionID, stationID, next, result); err != nil {
		log.Printf("failed to save entry status for %s/%s: %v", electionID, stationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save entry status"})
		return
	}

	h.hub.PublishEntryAdvanced(electionID, stationID, next.Kind)

	body := gin.H{"status": next}
	if diffs != nil {
		body["differences"] = diffs
	}
	c.JSON(http.StatusOK, body)
}

// electionRequiresValidation reports whether the given operation needs
// the election definition loaded to run validation (finalise/delete-
// second/keep-*), as opposed to the pure bookkeeping transitions that
// never call internal/validation.
func electionRequiresValidation(op entryOperation) bool {
	switch op {
	case opFinaliseFirst, opFinaliseSecond, opDeleteSecond, opKeepFirst, opKeepSecond:
		return true
	default:
		return false
	}
}

// applyOperation dispatches req to the matching internal/dataentry
// function. It returns the resulting status, the agreed result (non-nil
// only when finalise_second lands on Definitive), and the W001
// diagnostic (non-nil only when finalise_second lands on
// EntriesDifferent).
func applyOperation(req entryRequest, current domain.DataEntryStatus, election domain.Election) (domain.DataEntryStatus, *domain.PollingStationResults, *validation.Diagnostic, error) {
	entry := req.currentEntry()

	switch req.Operation {
	case opClaimFirst:
		next, err := dataentry.ClaimFirst(current, entry)
		return next, nil, nil, err
	case opUpdateFirst:
		next, err := dataentry.UpdateFirst(current, entry)
		return next, nil, nil, err
	case opFinaliseFirst:
		next, err := dataentry.FinaliseFirst(current, req.UserID, election)
		return next, nil, nil, err
	case opDeleteFirst:
		next, err := dataentry.DeleteFirst(current, req.UserID)
		return next, nil, nil, err
	case opResumeFirst:
		next, err := dataentry.ResumeFirst(current)
		return next, nil, nil, err
	case opDiscardFirst:
		next, err := dataentry.DiscardFirst(current)
		return next, nil, nil, err
	case opClaimSecond:
		next, err := dataentry.ClaimSecond(current, entry)
		return next, nil, nil, err
	case opUpdateSecond:
		next, err := dataentry.UpdateSecond(current, entry)
		return next, nil, nil, err
	case opFinaliseSecond:
		outcome, err := dataentry.FinaliseSecond(current, req.UserID, election)
		if err != nil {
			return domain.DataEntryStatus{}, nil, nil, err
		}
		return outcome.Status, outcome.Result, outcome.Differences, nil
	case opDeleteSecond:
		next, err := dataentry.DeleteSecond(current, req.UserID, election)
		return next, nil, nil, err
	case opKeepFirst:
		next, err := dataentry.KeepFirst(current, election)
		return next, nil, nil, err
	case opKeepSecond:
		next, err := dataentry.KeepSecond(current, election)
		return next, nil, nil, err
	case opDiscardBoth:
		next, err := dataentry.DiscardBoth(current)
		return next, nil, nil, err
	default:
		return domain.DataEntryStatus{}, nil, nil, &dataentry.TransitionError{Kind: dataentry.ErrInvalid}
	}
}

// respondTransitionError maps the three-plus-one error taxonomies (§7) to
// HTTP status codes: DataError -> 400, ValidationResults with errors ->
// 200 with the status unchanged, DataEntryTransitionError -> 409 except
// Invalid -> 400. It always logs at the point of translation and always
// returns a JSON body.
func (h *APIHandler) respondTransitionError(c *gin.Context, err error, unchanged domain.DataEntryStatus) {
	var dataErr *domain.DataError
	if errors.As(err, &dataErr) {
		log.Printf("data entry transition failed (structural): %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "structural", "details": dataErr.Error()})
		return
	}

	var te *dataentry.TransitionError
	if errors.As(err, &te) {
		log.Printf("data entry transition failed (%s): %v", te.Kind, err)
		switch te.Kind {
		case dataentry.ErrInvalid:
			c.JSON(http.StatusBadRequest, gin.H{"error": string(te.Kind)})
		case dataentry.ErrValidatorError:
			c.JSON(http.StatusBadRequest, gin.H{"error": "structural", "details": te.DataErr.Error()})
		case dataentry.ErrValidationError:
			c.JSON(http.StatusOK, gin.H{
				"status": unchanged,
				"validation": gin.H{
					"errors":   te.ValidationErr.Errors,
					"warnings": te.ValidationErr.Warnings,
				},
			})
		default:
			c.JSON(http.StatusConflict, gin.H{"error": string(te.Kind)})
		}
		return
	}

	log.Printf("data entry transition failed (unmapped): %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// ── Apportionment ─────────────────────────────────────────────────────

func (h *APIHandler) handleComputeApportionment(c *gin.Context) {
	electionID, err := domain.ParseElectionID(c.Param("electionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid election id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	election, found, err := h.store.LoadElection(ctx, electionID)
	if err != nil {
		log.Printf("failed to load election %s: %v", electionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load election"})
		return
	}
	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"error": "election not registered"})
		return
	}

	statuses, err := h.store.ListStationStatuses(ctx, electionID)
	if err != nil {
		log.Printf("failed to list station statuses for election %s: %v", electionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list station statuses"})
		return
	}
	if len(statuses) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": string(apportionment.ErrNotAvailableUntilDataEntryFinalised)})
		return
	}
	for _, s := range statuses {
		if s.Status.Kind != domain.KindDefinitive {
			c.JSON(http.StatusConflict, gin.H{"error": string(apportionment.ErrNotAvailableUntilDataEntryFinalised)})
			return
		}
	}

	results, err := h.store.ListDefinitiveResults(ctx, electionID)
	if err != nil {
		log.Printf("failed to list definitive results for election %s: %v", electionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list definitive results"})
		return
	}

	summary, err := reporting.Aggregate(election, results)
	if err != nil {
		log.Printf("reporting aggregation failed for election %s: %v", electionID, err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "aggregation failed", "details": err.Error()})
		return
	}

	listVotes := summary.ListVotes(election)
	apportionInput := apportionment.Input{NumberOfSeats: election.NumberOfSeats}
	for _, lv := range listVotes {
		apportionInput.ListVotes = append(apportionInput.ListVotes, apportionment.ListVotes{
			ListNumber:         lv.ListNumber,
			Votes:              lv.Votes,
			NumberOfCandidates: lv.NumberOfCandidates,
		})
	}

	apportionResult, err := apportionment.Apportion(apportionInput)
	if err != nil {
		h.respondApportionmentError(c, err)
		return
	}

	nominationInput := nomination.Input{NumberOfSeats: election.NumberOfSeats, Quota: apportionResult.Quota}
	for i, lv := range listVotes {
		nominationInput.Lists = append(nominationInput.Lists, nomination.ListCandidateVotes{
			ListNumber:     lv.ListNumber,
			ListSeats:      apportionResult.FinalStanding[i].TotalSeats(),
			CandidateVotes: lv.CandidateVotes,
		})
	}

	nominationResult, err := nomination.Nominate(nominationInput)
	if err != nil {
		h.respondApportionmentError(c, err)
		return
	}

	record := store.ApportionmentRecord{Apportionment: apportionResult, Nomination: nominationResult}
	if err := h.store.SaveApportionmentResult(ctx, electionID, record); err != nil {
		log.Printf("failed to save apportionment result for election %s: %v", electionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save apportionment result"})
		return
	}

	h.hub.PublishApportionmentCompleted(electionID)
	c.JSON(http.StatusOK, record)
}

func (h *APIHandler) handleGetApportionment(c *gin.Context) {
	electionID, err := domain.ParseElectionID(c.Param("electionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid election id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	record, found, err := h.store.LoadApportionmentResult(ctx, electionID)
	if err != nil {
		log.Printf("failed to load apportionment result for election %s: %v", electionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load apportionment result"})
		return
	}
	if !found {
		c.JSON(http.StatusConflict, gin.H{"error": string(apportionment.ErrNotAvailableUntilDataEntryFinalised)})
		return
	}
	c.JSON(http.StatusOK, record)
}

// respondApportionmentError maps ApportionmentError/nomination.Error (the
// fatal seat-assignment/nomination failures) to 422, logging the tied-on
// set for audit the way the core hands it back.
func (h *APIHandler) respondApportionmentError(c *gin.Context, err error) {
	var apErr *apportionment.Error
	if errors.As(err, &apErr) {
		log.Printf("apportionment failed (%s): tied on %v", apErr.Kind, apErr.TiedOn)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": string(apErr.Kind), "tiedOn": apErr.TiedOn})
		return
	}
	var nomErr *nomination.Error
	if errors.As(err, &nomErr) {
		log.Printf("nomination failed (%s) on list %d: tied on %v", nomErr.Kind, nomErr.ListNumber, nomErr.TiedOn)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      string(nomErr.Kind),
			"listNumber": nomErr.ListNumber,
			"tiedOn":     nomErr.TiedOn,
		})
		return
	}
	log.Printf("apportionment/nomination failed (unmapped): %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
