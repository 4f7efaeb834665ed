package objectstore

var ObjectKey = objectKey //nolint:gochecknoglobals // test export
