/*
Package config loads the relay configuration.

Values are layered, later layers winning:

 1. Default(): built-in constants (port 8080, sync 5s, sweep 5m, max age
    93m, inactivity 2h, metadata and stats every 60s)
 2. YAML file passed with --config
 3. Environment: PORT and STARHUNT_* (see the env tags on Config)
 4. Flags set explicitly on the serve command

Example file:

	port: 8080
	log_level: info
	data_dir: /var/lib/starhunt
	sweep_interval: 5m
	max_age: 93m
	trust_client_clock: true
	spawn_times_url: https://...
*/
package config
