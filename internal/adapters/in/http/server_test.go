package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "escrow/internal/adapters/in/http"
	postgres_adapter "escrow/internal/adapters/out/postgres"
	"escrow/internal/adapters/out/postgres/oraclerepo"
	"escrow/internal/adapters/out/postgres/pgtest"
	"escrow/internal/core/application/usecases/commands"
	"escrow/internal/core/application/usecases/queries"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/services"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/logging"
	"escrow/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

var startedAt = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type uowFactory struct {
	factory *postgres_adapter.GormUnitOfWorkFactory
}

func (f uowFactory) Create() commands.UoW {
	return f.factory.Create()
}

type ServerTestSuite struct {
	suite.Suite
	e *echo.Echo
}

func (s *ServerTestSuite) SetupTest() {
	db := pgtest.OpenSQLite(s.T())
	clock := ports.ClockFunc(func() time.Time { return startedAt })
	factory := uowFactory{factory: postgres_adapter.NewGormUnitOfWorkFactory(db, clock)}
	reg := prometheus.NewRegistry()

	fees, err := services.NewFeeCalculator(500, services.FeePolicy{}, nil)
	s.Require().NoError(err)
	executor, err := commands.NewReleaseExecutor(fees, "fees:escrow", clock, metrics.New(reg))
	s.Require().NoError(err)

	treasury, _ := kernel.NewActor("treasury")
	attester, _ := kernel.NewActor("attester")
	oracle := oraclerepo.NewGormOracle(db, clock, []kernel.Actor{attester})

	server := httpadapter.NewServer(httpadapter.Handlers{
		CreateWorkOrder:          commands.NewCreateWorkOrderCommandHandler(factory, clock),
		SubmitDelivery:           commands.NewSubmitDeliveryCommandHandler(factory, clock),
		ApproveDelivery:          commands.NewApproveDeliveryCommandHandler(factory, executor, clock),
		RejectDelivery:           commands.NewRejectDeliveryCommandHandler(factory, clock),
		CancelWorkOrder:          commands.NewCancelWorkOrderCommandHandler(factory, executor),
		ReleaseEscrow:            commands.NewReleaseEscrowCommandHandler(factory, executor),
		ExtendEscrow:             commands.NewExtendEscrowCommandHandler(factory, clock),
		OracleRelease:            commands.NewOracleReleaseCommandHandler(factory, executor, oracle, clock),
		SubmitMilestone:          commands.NewSubmitMilestoneCommandHandler(factory, clock),
		ApproveMilestone:         commands.NewApproveMilestoneCommandHandler(factory, executor, clock),
		RequestMilestoneRevision: commands.NewRequestMilestoneRevisionCommandHandler(factory, clock),
		FileDispute:              commands.NewFileDisputeCommandHandler(factory, clock),
		RespondToDispute:         commands.NewRespondToDisputeCommandHandler(factory, clock),
		ResolveDispute:           commands.NewResolveDisputeCommandHandler(factory, executor, clock),
		RecordAttestation:        commands.NewRecordAttestationCommandHandler(oracle),
		Deposit:                  commands.NewDepositCommandHandler(factory, []kernel.Actor{treasury}),
		GetWorkOrder:             queries.NewGetWorkOrderQueryHandler(db),
		GetEscrow:                queries.NewGetEscrowQueryHandler(db),
		GetDispute:               queries.NewGetDisputeQueryHandler(db),
		ListEscrowEvents:         queries.NewListEscrowEventsQueryHandler(db),
	}, logging.Discard())

	s.e, err = httpadapter.NewEcho(s.T().Context(), server, reg)
	s.Require().NoError(err)
}

func (s *ServerTestSuite) do(method, path, actor string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		s.Require().NoError(err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if actor != "" {
		req.Header.Set(httpadapter.ActorHeader, actor)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) decode(rec *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), out))
}

func (s *ServerTestSuite) deposit(account string, units int64) {
	rec := s.do(http.MethodPost, "/api/v1/ledger/deposits", "treasury", httpadapter.Deposit{
		Account: account, Asset: "USD", Amount: units, Key: "seed-" + account,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *ServerTestSuite) createWorkOrder(total int64) httpadapter.WorkOrderCreated {
	rec := s.do(http.MethodPost, "/api/v1/work-orders", "requester", httpadapter.NewWorkOrder{
		Fulfiller: "fulfiller",
		Asset:     "USD",
		Total:     total,
		ExpiresAt: startedAt.Add(30 * 24 * time.Hour),
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created httpadapter.WorkOrderCreated
	s.decode(rec, &created)
	return created
}

func (s *ServerTestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", "", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("Healthy", rec.Body.String())
}

func (s *ServerTestSuite) TestSwaggerDocument() {
	rec := s.do(http.MethodGet, "/swagger/doc.json", "", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "createWorkOrder")
}

func (s *ServerTestSuite) TestApprovalFlow() {
	s.deposit("requester", 100)
	created := s.createWorkOrder(100)
	workOrderPath := "/api/v1/work-orders/" + created.WorkOrderID.String()

	rec := s.do(http.MethodPost, workOrderPath+"/submit", "fulfiller",
		httpadapter.Deliverables{Deliverables: []string{"report.pdf"}})
	s.Require().Equal(http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, workOrderPath+"/approve", "requester", nil)
	s.Require().Equal(http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, workOrderPath, "fulfiller", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var wo httpadapter.WorkOrder
	s.decode(rec, &wo)
	s.Equal("Completed", wo.Status)
	s.Equal([]string{"report.pdf"}, wo.Deliverables)

	rec = s.do(http.MethodGet, "/api/v1/escrows/"+created.EscrowID.String(), "requester", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var e httpadapter.Escrow
	s.decode(rec, &e)
	s.Equal(int64(100), e.Released)
	s.Equal(int64(0), e.Remainder)
	s.Equal("Released", e.Status)

	rec = s.do(http.MethodGet, "/api/v1/escrows/"+created.EscrowID.String()+"/events?limit=50", "fulfiller", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var events []httpadapter.Event
	s.decode(rec, &events)
	s.Require().NotEmpty(events)
	s.Equal("workorder.created", events[0].Type)
	types := make([]string, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	s.Contains(types, "escrow.released")

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "escrow_release_executions_total")
}

func (s *ServerTestSuite) TestPartialRelease() {
	s.deposit("requester", 100)
	created := s.createWorkOrder(100)

	rec := s.do(http.MethodPost, "/api/v1/escrows/"+created.EscrowID.String()+"/release", "requester",
		httpadapter.ReleaseRequest{Amount: 30})

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var out httpadapter.ReleaseOutcome
	s.decode(rec, &out)
	s.Equal(int64(30), out.Gross)
	s.Require().Len(out.Legs, 1)
	s.Equal("fulfiller", out.Legs[0].Beneficiary)
	s.Equal(int64(30), out.Legs[0].Net)
	s.NotNil(out.Legs[0].ReceiptID)
}

func (s *ServerTestSuite) TestErrorMapping() {
	s.deposit("requester", 100)
	created := s.createWorkOrder(100)
	escrowPath := "/api/v1/escrows/" + created.EscrowID.String()

	tests := []struct {
		name   string
		method string
		path   string
		actor  string
		body   any
		want   int
	}{
		{"missing caller", http.MethodGet, escrowPath, "", nil, http.StatusBadRequest},
		{"malformed id", http.MethodGet, "/api/v1/escrows/not-a-uuid", "requester", nil, http.StatusBadRequest},
		{"unknown work order", http.MethodGet, "/api/v1/work-orders/" + kernel.NewUUID().String(), "requester", nil,
			http.StatusNotFound},
		{"outsider read", http.MethodGet, escrowPath, "outsider", nil, http.StatusForbidden},
		{"fulfiller releases", http.MethodPost, escrowPath + "/release", "fulfiller",
			httpadapter.ReleaseRequest{Amount: 10}, http.StatusForbidden},
		{"approve before delivery", http.MethodPost, "/api/v1/work-orders/" + created.WorkOrderID.String() + "/approve",
			"requester", nil, http.StatusConflict},
		{"release of zero", http.MethodPost, escrowPath + "/release", "requester",
			httpadapter.ReleaseRequest{Amount: 0}, http.StatusBadRequest},
		{"unfunded requester", http.MethodPost, "/api/v1/work-orders", "broke", httpadapter.NewWorkOrder{
			Fulfiller: "fulfiller", Asset: "USD", Total: 10, ExpiresAt: startedAt.Add(time.Hour),
		}, http.StatusPaymentRequired},
		{"deposit by non-operator", http.MethodPost, "/api/v1/ledger/deposits", "requester", httpadapter.Deposit{
			Account: "requester", Asset: "USD", Amount: 5, Key: "self",
		}, http.StatusForbidden},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.do(tt.method, tt.path, tt.actor, tt.body)

			s.Equal(tt.want, rec.Code, rec.Body.String())
			var body httpadapter.Error
			s.decode(rec, &body)
			s.Equal(tt.want, body.Code)
			s.NotEmpty(body.Message)
		})
	}
}

func (s *ServerTestSuite) TestDisputeFlow() {
	s.deposit("requester", 100)
	created := s.createWorkOrder(100)

	rec := s.do(http.MethodPost, "/api/v1/escrows/"+created.EscrowID.String()+"/disputes", "fulfiller",
		httpadapter.NewDispute{
			Reason:   "work was delivered by email",
			Proposal: httpadapter.Allocation{ToRequester: 20, ToFulfiller: 80},
		})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var filed httpadapter.DisputeCreated
	s.decode(rec, &filed)
	disputePath := "/api/v1/disputes/" + filed.DisputeID.String()

	rec = s.do(http.MethodPost, disputePath+"/accept", "requester", nil)
	s.Require().Equal(http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, disputePath, "fulfiller", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var d httpadapter.Dispute
	s.decode(rec, &d)
	s.Equal("Resolved", d.Status)
	s.Equal("mutual", d.Mode)
	s.Require().NotNil(d.Resolution)
	s.Equal(httpadapter.Allocation{ToRequester: 20, ToFulfiller: 80}, *d.Resolution)
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}
