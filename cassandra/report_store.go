package cassandra

import (
	"context"
	"fmt"

	"github.com/gocql/gocql"

	"github.com/sharedcode/premortem"
)

var errClosed = fmt.Errorf("Cassandra connection is closed, 'call OpenConnection(config) to open it")

type reportStore struct{}

// NewReportStore returns a premortem.ReportStore over the global connection.
// Writes are retried with backoff on transient errors.
func NewReportStore() premortem.ReportStore {
	return &reportStore{}
}

// Put upserts r.
func (rs *reportStore) Put(ctx context.Context, r premortem.Report) error {
	if connection == nil {
		return errClosed
	}
	id, err := gocql.ParseUUID(r.ID)
	if err != nil {
		return fmt.Errorf("report id %q is not a UUID: %w", r.ID, err)
	}
	doc, err := premortem.DefaultMarshaler.Marshal(r)
	if err != nil {
		return err
	}
	s := r.Summary()
	insertStatement := fmt.Sprintf("INSERT INTO %s.reports (id, created_at, title, owner, risk, status, scenarios, vetoed, doc) VALUES(?,?,?,?,?,?,?,?,?);", connection.Config.Keyspace)
	return premortem.Retry(ctx, func(ctx context.Context) error {
		qry := connection.Session.Query(insertStatement, id, s.CreatedAt, s.Title, r.Owner, s.OverallRiskScore,
			string(s.DecisionStatus), s.Scenarios, s.Vetoed, doc).WithContext(ctx)
		if connection.Config.ConsistencyBook.ReportAdd > gocql.Any {
			qry.Consistency(connection.Config.ConsistencyBook.ReportAdd)
		}
		return qry.Exec()
	}, nil)
}

// Get fetches the report with id.
func (rs *reportStore) Get(ctx context.Context, id string) (premortem.Report, bool, error) {
	if connection == nil {
		return premortem.Report{}, false, errClosed
	}
	uid, err := gocql.ParseUUID(id)
	if err != nil {
		return premortem.Report{}, false, nil
	}
	selectStatement := fmt.Sprintf("SELECT doc FROM %s.reports WHERE id = ?;", connection.Config.Keyspace)
	qry := connection.Session.Query(selectStatement, uid).WithContext(ctx)
	if connection.Config.ConsistencyBook.ReportGet > gocql.Any {
		qry.Consistency(connection.Config.ConsistencyBook.ReportGet)
	}
	var doc []byte
	if err := qry.Scan(&doc); err != nil {
		if err == gocql.ErrNotFound {
			return premortem.Report{}, false, nil
		}
		return premortem.Report{}, false, err
	}
	var r premortem.Report
	if err := premortem.DefaultMarshaler.Unmarshal(doc, &r); err != nil {
		return premortem.Report{}, false, err
	}
	return r, true, nil
}

// List returns the summaries of all reports, newest first, read from the summary columns.
func (rs *reportStore) List(ctx context.Context) ([]premortem.ReportSummary, error) {
	if connection == nil {
		return nil, errClosed
	}
	selectStatement := fmt.Sprintf("SELECT id, created_at, title, owner, risk, status, scenarios, vetoed FROM %s.reports;", connection.Config.Keyspace)
	qry := connection.Session.Query(selectStatement).WithContext(ctx)
	if connection.Config.ConsistencyBook.ReportList > gocql.Any {
		qry.Consistency(connection.Config.ConsistencyBook.ReportList)
	}
	iter := qry.Iter()
	var r []premortem.ReportSummary
	var s premortem.ReportSummary
	var id gocql.UUID
	var status string
	for iter.Scan(&id, &s.CreatedAt, &s.Title, &s.Owner, &s.OverallRiskScore, &status, &s.Scenarios, &s.Vetoed) {
		s.ID = id.String()
		s.DecisionStatus = premortem.DecisionStatus(status)
		r = append(r, s)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	premortem.SortNewestFirst(r)
	return r, nil
}
