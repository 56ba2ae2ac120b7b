package mocks

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate
//counterfeiter:generate -o=flow.existencechecker.mock.go ../flow ExistenceChecker
//counterfeiter:generate -o=flow.typemapper.mock.go ../flow TypeMapper
