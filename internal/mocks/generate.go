package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Store --dir ../domain/rawmatch --output domain/rawmatch --outpkg rawmatchmock --filename store_mock.go
