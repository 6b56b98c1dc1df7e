// Package scheduler runs the gateway's background maintenance on cron
// schedules.
//
// Four jobs are known:
//
//	cache_sweep        drop expired cache entries             default "@every 10m"
//	rate_limit_sweep   drop rate limit windows that ended     default "@every 10m"
//	budget_rollover    reset the budget on a new month         default "@hourly"
//	metrics_refresh    update state gauges                     default "@every 1m"
//
// Schedules use standard five-field cron syntax or robfig/cron descriptors
// such as "@hourly" and "@every 5m". An empty schedule disables the job.
// None of the jobs are needed for correctness: expired entries are ignored on
// read and the budget checks for month rollover before reporting.
package scheduler
