// Command server runs the SEO render API.
//
// Configuration comes from the environment (see internal/infrastructure/config);
// the -port flag overrides PORT. SIGINT and SIGTERM trigger a graceful
// shutdown that waits up to SHUTDOWN_TIMEOUT for in-flight renders.
package main
