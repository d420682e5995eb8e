// Package alarm contains the core domain types of the scripture alarm.
//
// It defines Record (one configured alarm), the Days weekday set, the
// ContentSelector choosing which scripture is read at fire time, the Payload
// carried by a wake timer, and NextFireTime, the pure function computing the
// next instant an alarm should fire.
package alarm
