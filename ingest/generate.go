package ingest

//go:generate mockgen -package mocks -destination mocks/mock.go github.com/mycok/rfcFreq/ingest Fetcher
