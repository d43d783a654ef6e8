// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags and Environment

	-p                PORT                 server port (3318)
	-d                DATABASE_URL         database URL (required)
	-t                DATABASE_TYPE        postgres or sqlite (postgres)
	-redis            REDIS_URL            shared session store (optional)
	-admin-user       ADMIN_USERNAME       bootstrap admin
	-admin-password   ADMIN_PASSWORD       bootstrap admin password
	-bcrypt-cost      BCRYPT_COST          cost for stored secrets (10)
	-member-ttl       MEMBER_SESSION_TTL   member session lifetime (4h)
	-admin-ttl        ADMIN_SESSION_TTL    admin session lifetime (8h)
	-request-timeout  REQUEST_TIMEOUT      per-request deadline (15s)
	-store-timeout    STORE_TIMEOUT        per-query deadline (5s)
	-log-level        LOG_LEVEL            debug, info, warn, error (info)
	-log-format       LOG_FORMAT           text or json (text)
	-env-file                              env file to load (.env)

CLI flags take precedence over environment variables. The env file is
loaded with godotenv before the fallbacks are read; it never overrides
variables that are already set, and a missing file is not an error.

# Validation

ParseFlags returns an error if DATABASE_URL is missing, if a numeric or
duration value does not parse, or if only one of the bootstrap admin
credentials is given.
*/
package cliparse
