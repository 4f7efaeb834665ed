package cloudfoundry

// NewPlatformGatewayWithClient exports newPlatformGateway for testing.
var NewPlatformGatewayWithClient = newPlatformGateway //nolint:gochecknoglobals // test export
