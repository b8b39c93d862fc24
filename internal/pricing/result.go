package pricing

// ErrorKind identifies why a calculation could not produce a listing price.
// All kinds reflect business-data conditions; none are retryable.
type ErrorKind string

const (
	// ErrInvalidInput covers non-positive cost/weight/dimensions and a
	// rounded product price that came out at or below zero.
	ErrInvalidInput ErrorKind = "invalid_input"

	// ErrNoMatchingShippingPolicy means no zone covers the destination,
	// effective weight and estimated price band.
	ErrNoMatchingShippingPolicy ErrorKind = "no_matching_shipping_policy"

	// ErrInsufficientMargin means the no-refund profit fell below the
	// policy floor, or the fee load plus target margin already exceeds
	// 100% of revenue.
	ErrInsufficientMargin ErrorKind = "insufficient_margin"
)

// AuditStep is one arithmetic step of a calculation, kept for human review.
type AuditStep struct {
	Step    int     `json:"step"`
	Label   string  `json:"label"`
	Formula string  `json:"formula"`
	Value   float64 `json:"value"`
}

// FeeBreakdown itemizes every cost deducted from buyer revenue.
type FeeBreakdown struct {
	Duty              float64 `json:"duty"`
	DDPFee            float64 `json:"ddpFee"`
	InsertionFee      float64 `json:"insertionFee"`
	FinalValueFee     float64 `json:"finalValueFee"`
	ProcessingFee     float64 `json:"processingFee"`
	FXLossProvision   float64 `json:"fxLossProvision"`
	InternationalFee  float64 `json:"internationalFee"`
	ActualShipping    float64 `json:"actualShipping"`
	CostSettlement    float64 `json:"costSettlement"`
	FinalValueFeeRate float64 `json:"finalValueFeeRate"`
}

// MarginDiagnostics reports how far a failed calculation fell short of the
// margin policy, so the operator can see what to adjust.
type MarginDiagnostics struct {
	AchievedMargin float64 `json:"achievedMargin"`
	RequiredMargin float64 `json:"requiredMargin"`
	AchievedProfit float64 `json:"achievedProfit"`
	RequiredProfit float64 `json:"requiredProfit"`
}

// CalculationResult is the complete outcome of one pricing run.
// On failure Success is false, Error names the kind, and the audit trail
// covers the steps completed before the failure.
type CalculationResult struct {
	Success bool      `json:"success"`
	Error   ErrorKind `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`

	ProductPrice     float64 `json:"productPrice"`
	DisplayShipping  float64 `json:"displayShipping"`
	DisplayHandling  float64 `json:"displayHandling"`
	TotalRevenue     float64 `json:"totalRevenue"`
	SearchTotal      float64 `json:"searchTotal"`
	DeliveryMode     string  `json:"deliveryMode,omitempty"`
	ShippingZoneName string  `json:"shippingZoneName,omitempty"`

	ProfitNoRefund         float64 `json:"profitNoRefund"`
	ProfitMarginNoRefund   float64 `json:"profitMarginNoRefund"`
	ProfitNoRefundSource   float64 `json:"profitNoRefundSource"`
	ProfitWithRefund       float64 `json:"profitWithRefund"`
	ProfitWithRefundSource float64 `json:"profitWithRefundSource"`
	RefundAmount           float64 `json:"refundAmount"`
	RefundAmountSource     float64 `json:"refundAmountSource"`

	EffectiveWeight  float64 `json:"effectiveWeight"`
	VolumetricWeight float64 `json:"volumetricWeight"`

	Fees FeeBreakdown `json:"fees"`

	TariffFallback      bool   `json:"tariffFallback,omitempty"`
	TariffDescription   string `json:"tariffDescription,omitempty"`
	CategoryFeeFallback bool   `json:"categoryFeeFallback,omitempty"`

	Diagnostics *MarginDiagnostics `json:"diagnostics,omitempty"`
	AuditTrail  []AuditStep        `json:"auditTrail"`
}
