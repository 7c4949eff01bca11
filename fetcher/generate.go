package fetcher

//go:generate mockgen -package mocks -destination mocks/mock.go github.com/mycok/rfcFreq/fetcher URLGetter,PrivateNetworkDetector
