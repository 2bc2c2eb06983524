// Package status defines the closed lead status vocabulary shared by
// validation, storage and reporting. Adding or removing a status is a
// one-place change here.
package status

// Status is a lead pipeline stage.
type Status string

const (
	Pending            Status = "PENDING"
	Rejected           Status = "REJECTED"
	Verified           Status = "VERIFIED"
	RejectedByClient   Status = "REJECTED_BY_CLIENT"
	Posted             Status = "POSTED"
	Paid               Status = "PAID"
	Signed             Status = "SIGNED"
	VM                 Status = "VM"
	Transferred        Status = "TRANSFERRED"
	SendToAnotherBuyer Status = "SEND TO ANOTHER BUYER"
	Duplicate          Status = "DUPLICATE"
	NotResponding      Status = "NOT_RESPONDING"
	Felony             Status = "FELONY"
	DeadLead           Status = "DEAD_LEAD"
	Working            Status = "WORKING"
	CallBack           Status = "CALL_BACK"
	Attempt1           Status = "ATTEMPT_1"
	Attempt2           Status = "ATTEMPT_2"
	Attempt3           Status = "ATTEMPT_3"
	Attempt4           Status = "ATTEMPT_4"
	Chargeback         Status = "CHARGEBACK"
	WaitingID          Status = "WAITING_ID"
	SentClient         Status = "SENT_CLIENT"
	QC                 Status = "QC"
	IDVerified         Status = "ID_VERIFIED"
	Billable           Status = "BILLABLE"
	CampaignPaused     Status = "CAMPAIGN_PAUSED"
	SentToLawFirm      Status = "SENT_TO_LAW_FIRM"
)

// Initial is the status every lead is created with.
const Initial = Pending

// All lists every valid status. The order is not meaningful; use Sequence
// for display ordering.
var All = []Status{
	Pending, Rejected, Verified, RejectedByClient, Posted, Paid, Signed,
	VM, Transferred, SendToAnotherBuyer, Duplicate, NotResponding, Felony,
	DeadLead, Working, CallBack, Attempt1, Attempt2, Attempt3, Attempt4,
	Chargeback, WaitingID, SentClient, QC, IDVerified, Billable,
	CampaignPaused, SentToLawFirm,
}

var valid = func() map[Status]struct{} {
	m := make(map[Status]struct{}, len(All))
	for _, s := range All {
		m[s] = struct{}{}
	}
	return m
}()

// Valid reports whether s is a member of the enumeration.
func Valid(s Status) bool {
	_, ok := valid[s]
	return ok
}

// Sequence orders statuses for charts and lists: money, pipeline,
// outreach, rejection.
var Sequence = []Status{
	Paid, Billable, Signed, SentClient, SentToLawFirm, IDVerified, Verified,
	Posted, Transferred, SendToAnotherBuyer, VM,
	Working, QC, CallBack, WaitingID, Pending,
	Attempt1, Attempt2, Attempt3, Attempt4,
	CampaignPaused, NotResponding, Rejected, RejectedByClient, Duplicate,
	Felony, Chargeback, DeadLead,
}

// Buckets groups statuses for dashboard summaries. The grouping is not a
// partition: statuses outside every bucket contribute to none.
var Buckets = map[string][]Status{
	"PIPELINE":   {Working, QC, Attempt1, Attempt2, Attempt3, Attempt4, CallBack},
	"CONVERSION": {Verified, IDVerified, Signed, SentClient, Paid, Billable, SentToLawFirm},
	"RISK":       {Rejected, RejectedByClient, Duplicate, NotResponding, Felony, DeadLead, Chargeback},
}
