// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

/*
Package registry loads and validates the declarative dashboard definitions:
KPIs, charts and filters.

A definitions document has three lists:

	{
	  "kpis":    [{"id": "high_priority", "name": "High Priority",
	               "calculation": "count_where", "field": "priority",
	               "condition": {"field": "priority", "operator": "equals", "value": "high"},
	               "format": "number"}],
	  "charts":  [{"id": "by_status", "type": "bar", "x_field": "status"}],
	  "filters": [{"id": "region", "field": "region", "type": "multiselect",
	               "options": ["North", "South"]}]
	}

Load rejects a document with a *ConfigError listing every problem found:
missing fields required by a definition's kind, duplicate ids within a list,
and unknown calculation, chart or filter types. A Registry is immutable once
built and lists are returned in declaration order.
*/
package registry
