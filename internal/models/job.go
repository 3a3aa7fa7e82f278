// job.go
//
// Tevor repair-shop management API
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of tevor-api.
// tevor-api is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// tevor-api is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with tevor-api.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package models

import (
	"time"

	"gorm.io/datatypes"
)

// Job status values
const (
	JobStatusNew      = "NEW"
	JobStatusAssigned = "ASSIGNED"
	JobStatusFixing   = "FIXING"
	JobStatusDone     = "DONE"
	JobStatusRework   = "REWORK"
)

// Job priority values
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

// JobStatuses lists the recognised status values in lifecycle order
var JobStatuses = []string{JobStatusNew, JobStatusAssigned, JobStatusFixing, JobStatusDone, JobStatusRework}

// Problem is an entry of a job's embedded problems list
type Problem struct {
	ProbID      string `json:"probid"`
	Description string `json:"description"`
}

// JobPart references an open part request held by a job
type JobPart struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	JobID     string    `gorm:"column:jobid;size:32;not null;index" json:"-"`
	PrqID     string    `gorm:"column:prqid;uniqueIndex;size:64;not null" json:"prqid"`
	CreatedAt time.Time `json:"-"`
}

// TableName overrides the table name for JobPart
func (JobPart) TableName() string {
	return "job_parts"
}

// Job is a repair job for one device
type Job struct {
	ID         uint64                       `gorm:"primaryKey;autoIncrement" json:"-"`
	JobID      string                       `gorm:"column:jobid;uniqueIndex;size:32;not null" json:"jobid"`
	Client     string                       `gorm:"size:255;not null" json:"client"`
	IMEI       string                       `gorm:"column:imei;size:64;not null;default:''" json:"imei"`
	JobNo      string                       `gorm:"column:jobno;size:64;not null;default:''" json:"jobno"`
	Brand      string                       `gorm:"size:64;not null" json:"brand"`
	Model      string                       `gorm:"size:64;not null" json:"model"`
	Priority   string                       `gorm:"size:8;not null;default:MEDIUM" json:"priority"`
	Status     string                       `gorm:"size:16;not null;default:NEW;index" json:"status"`
	Approved   *bool                        `json:"approved"`
	Billed     bool                         `gorm:"not null;default:false" json:"billed"`
	Credited   bool                         `gorm:"not null;default:false" json:"credited"`
	Cancelled  bool                         `gorm:"not null;default:false;index" json:"cancelled"`
	Assignee   string                       `gorm:"size:16;not null;default:''" json:"assignee,omitempty"`
	DateIn     time.Time                    `json:"dateIn"`
	DateOut    *time.Time                   `json:"dateOut,omitempty"`
	Problems   datatypes.JSONSlice[Problem] `json:"problems"`
	Parts      []JobPart                    `gorm:"foreignKey:JobID;references:JobID" json:"parts"`
	Version    uint64                       `gorm:"not null;default:0" json:"-"`
	CreatedBy  string                       `gorm:"size:16;not null" json:"createdBy"`
	ModifiedBy string                       `gorm:"size:16;not null" json:"modifiedBy"`
	CreatedAt  time.Time                    `json:"createdAt"`
	UpdatedAt  time.Time                    `json:"updatedAt"`
}

// TableName overrides the table name for Job
func (Job) TableName() string {
	return "jobs"
}

// PartIDs returns the prqids of the job's open part requests in order
func (j *Job) PartIDs() []string {
	ids := make([]string, 0, len(j.Parts))
	for _, p := range j.Parts {
		ids = append(ids, p.PrqID)
	}
	return ids
}
