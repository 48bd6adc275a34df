package dto

import (
	"time"

	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
)

type MatchResult struct {
	RunID         string
	Identities    *entity.Identities
	Report        *entity.Report
	Records       int
	PopularNames  int
	PopularEmails int
	Elapsed       time.Duration
}

type KeyCount struct {
	Key     string
	Count   int
	Popular bool
}

type PopularityResult struct {
	Names  []KeyCount
	Emails []KeyCount
}
