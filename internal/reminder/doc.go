// Package reminder emails task owners about pending tasks that expire today.
//
// A Job looks up the due tasks and enqueues one Delivery per task; a
// WorkerPool drains the queue through a Mailer. Deliveries are fire and
// forget: a failed send is logged and dropped. The Scheduler runs the job at
// start and then on a fixed interval inside the server process; the remind
// command runs it once. The job waits for the workers when the queue is full.
package reminder
