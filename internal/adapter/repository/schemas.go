package repository

import "github.com/eslsoft/leitbox/pkg/filterexpr"

var listAttemptsSchema = filterexpr.ResourceSchema{
	Filter: map[string]filterexpr.FilterField{
		"list_id": {
			Kind: filterexpr.KindNumber,
			Ops:  map[filterexpr.Op]string{filterexpr.OpEQ: "ListID"},
		},
		"score": {
			Kind: filterexpr.KindNumber,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "ScoreMin",
				filterexpr.OpLTE: "ScoreMax",
			},
		},
		"submitted_at": {
			Kind: filterexpr.KindTimestamp,
			Ops:  map[filterexpr.Op]string{filterexpr.OpGTE: "SubmittedAfter"},
		},
	},
	Order: filterexpr.OrderSchema{
		DefaultPrimary:     "submitted_at",
		DefaultPrimaryDesc: true,
		FallbackKey:        "id",
		FallbackDesc:       true,
		Fields: map[string]filterexpr.OrderField{
			"submitted_at": {Expr: "submitted_at"},
			"score":        {Expr: "score"},
			"id":           {Expr: "id"},
		},
	},
}
