// Package testing prepares the process environment for test binaries that
// import it for side effects. Test mode is always forced on; the token
// secret is only filled in when the caller did not provide one.
package testing

import "os"

const testSecret = "test-secret-test-secret-test-secret!"

func init() {
	_ = os.Setenv("CREDISPHERE_TEST_MODE", "1")
	if _, ok := os.LookupEnv("AUTH_TOKEN_SECRET"); !ok {
		_ = os.Setenv("AUTH_TOKEN_SECRET", testSecret)
	}
}
