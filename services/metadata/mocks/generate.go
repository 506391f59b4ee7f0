package mocks

//go:generate mockgen -destination=mock_gateway.go -package=mocks marquee/services/metadata Gateway
