// Package services carries the application logic behind the driving
// ports. Each service orchestrates domain types and driven ports;
// none of them reach into adapter code directly.
package services
