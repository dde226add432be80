package reports

const (
	painless = "painless"

	lengthOfStayScript = "doc['stays_in_weekend_nights'].value + doc['stays_in_week_nights'].value"
	stayRevenueScript  = "doc['adr'].value * (doc['stays_in_week_nights'].value + doc['stays_in_weekend_nights'].value)"
	compositionScript  = "doc['adults'].value + ' adults, ' + doc['children'].value + ' children, ' + " +
		"doc['babies'].value + ' babies'"

	lengthOfStayField = "length_of_stay"
	stayRevenueField  = "stay_revenue"
	compositionField  = "booking_composition"

	rootProjection = "aggregations"
	topN           = 10
	topSources     = 5
	binaryBuckets  = 2
	leadTimeStep   = 10
)

type agg = map[string]any

// source picks either an inline script or the precomputed field holding the
// same value.
type source struct {
	precomputed bool
}

func (s source) computed(script, field string) agg {
	if s.precomputed {
		return agg{"field": field}
	}
	return agg{"script": agg{"source": script, "lang": painless}}
}

func (s source) lengthOfStay() agg { return s.computed(lengthOfStayScript, lengthOfStayField) }
func (s source) stayRevenue() agg  { return s.computed(stayRevenueScript, stayRevenueField) }
func (s source) composition() agg  { return s.computed(compositionScript, compositionField) }

func withParams(base agg, extra agg) agg {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func field(name string) agg { return agg{"field": name} }

func sizeZero(aggs agg) map[string]any {
	return map[string]any{"size": 0, "aggs": aggs}
}

// stayFactors are the metrics shared by the correlation reports.
func (s source) stayFactors(first string, firstAgg agg) agg {
	return agg{
		first:                 firstAgg,
		"average_stay_length": agg{"avg": s.lengthOfStay()},
		"special_requests_count": agg{
			"avg": field("total_of_special_requests"),
		},
	}
}

func templates(s source) []Report {
	return []Report{
		{
			Name:        "cancellation_rate",
			Description: "Average cancellation by market segment and hotel",
			Projection:  rootProjection,
			build: func() map[string]any {
				return sizeZero(agg{"market_segment": agg{
					"terms": field("market_segment.keyword"),
					"aggs": agg{"hotel_type": agg{
						"terms": field("hotel.keyword"),
						"aggs":  agg{"cancellation_rate": agg{"avg": field("is_canceled")}},
					}},
				}})
			},
		},
		{
			Name:        "adr_by_month",
			Description: "Average daily rate by arrival month and hotel",
			Projection:  rootProjection,
			build: func() map[string]any {
				return sizeZero(agg{"months": agg{
					"date_histogram": agg{"field": "arrival_date", "calendar_interval": "month", "format": "yyyy-MM-dd"},
					"aggs": agg{"hotel_type": agg{
						"terms": field("hotel.keyword"),
						"aggs":  agg{"average_adr": agg{"avg": field("adr")}},
					}},
				}})
			},
		},
		{
			Name:        "top_countries",
			Description: "Countries with the most bookings",
			Projection:  "aggregations.top_countries.buckets",
			build: func() map[string]any {
				return sizeZero(agg{"top_countries": agg{
					"terms": agg{"field": "country.keyword", "size": topN},
				}})
			},
		},
		{
			Name:        "length_of_stay_distribution",
			Description: "Bookings per total number of nights",
			Projection:  "aggregations.length_of_stay.buckets",
			build: func() map[string]any {
				return sizeZero(agg{"length_of_stay": agg{
					"terms": withParams(s.lengthOfStay(), agg{"size": topN}),
				}})
			},
		},
		{
			Name:        "booking_trends_over_time",
			Description: "Bookings per arrival month",
			Projection:  "aggregations.bookings_over_time.buckets",
			build: func() map[string]any {
				return sizeZero(agg{"bookings_over_time": agg{
					"date_histogram": agg{"field": "arrival_date", "calendar_interval": "month", "format": "yyyy-MM"},
				}})
			},
		},
		{
			Name:        "special_requests_impact_on_cancellations",
			Description: "Cancellation rate per number of special requests",
			Projection:  "aggregations.special_requests.buckets",
			build: func() map[string]any {
				return sizeZero(agg{"special_requests": agg{
					"terms": field("total_of_special_requests"),
					"aggs":  agg{"cancellation_rate": agg{"avg": field("is_canceled")}},
				}})
			},
		},
		{
			Name:        "average_lead_time_by_cancellation_status",
			Description: "Average lead time of canceled and kept bookings",
			Projection:  "aggregations.cancellation_status.buckets",
			build: func() map[string]any {
				return sizeZero(agg{"cancellation_status": agg{
					"terms": field("is_canceled"),
					"aggs":  agg{"average_lead_time": agg{"avg": field("lead_time")}},
				}})
			},
		},
		{
			Name:        "bookings_distribution_by_room_type",
			Description: "Bookings per reserved room type",
			Projection:  "aggregations.room_types.buckets",
			build: func() map[string]any {
				return sizeZero(agg{"room_types": agg{"terms": field("reserved_room_type.keyword")}})
			},
		},
		{
			Name:        "bookings_by_guest_country",
			Description: "Bookings per guest country",
			Projection:  "aggregations.guest_countries.buckets",
			build: func() map[string]any {
				return sizeZero(agg{"guest_countries": agg{
					"terms": agg{"field": "country.keyword", "size": topN},
				}})
			},
		},
		{
			Name:        "booking_source_analysis",
			Description: "Bookings per distribution channel",
			Projection:  "aggregations.booking_sources.buckets",
			build: func() map[string]any {
				return sizeZero(agg{"booking_sources": agg{
					"terms": agg{"field": "distribution_channel.keyword", "size": topSources},
				}})
			},
		},
		{
			Name:        "revenue_analysis_by_room_and_month",
			Description: "Stay revenue per room type and arrival month",
			Projection:  "aggregations.room_types.buckets",
			build: func() map[string]any {
				return sizeZero(agg{"room_types": agg{
					"terms": field("reserved_room_type.keyword"),
					"aggs": agg{"monthly_revenue": agg{
						"date_histogram": agg{
							"field": "arrival_date", "calendar_interval": "month",
							"format": "yyyy-MM", "min_doc_count": 1,
						},
						"aggs": agg{"revenue": agg{"sum": s.stayRevenue()}},
					}},
				}})
			},
		},
		{
			Name:        "impact_of_lead_time_on_adr",
			Description: "Average daily rate per lead time band",
			Projection:  "aggregations.lead_time_buckets.buckets",
			build: func() map[string]any {
				return sizeZero(agg{"lead_time_buckets": agg{
					"histogram": agg{"field": "lead_time", "interval": leadTimeStep, "min_doc_count": 1},
					"aggs":      agg{"average_adr": agg{"avg": field("adr")}},
				}})
			},
		},
		{
			Name:        "analyze_repeat_guest_bookings",
			Description: "Lead time, countries and hotels of new and repeat guests",
			Projection:  rootProjection,
			build: func() map[string]any {
				return sizeZero(agg{"repeat_guests": agg{
					"terms": agg{"field": "is_repeated_guest", "size": binaryBuckets},
					"aggs": agg{
						"average_lead_time":      agg{"avg": field("lead_time")},
						"bookings_by_country":    agg{"terms": field("country.keyword")},
						"bookings_by_hotel_type": agg{"terms": field("hotel.keyword")},
					},
				}})
			},
		},
		{
			Name:        "correlate_adr_with_factors",
			Description: "Cancellation, stay length and special requests per daily rate",
			Projection:  rootProjection,
			build: func() map[string]any {
				return sizeZero(agg{"adr_correlation": agg{
					"terms": agg{"field": "adr", "order": agg{"_key": "asc"}},
					"aggs":  s.stayFactors("cancellation_rate", agg{"avg": field("is_canceled")}),
				}})
			},
		},
		{
			Name:        "correlate_cancelations_with_factors",
			Description: "Lead time, stay length and special requests of canceled and kept bookings",
			Projection:  rootProjection,
			build: func() map[string]any {
				return sizeZero(agg{"cancellation_correlation": agg{
					"terms": agg{"field": "is_canceled", "size": binaryBuckets},
					"aggs":  s.stayFactors("average_lead_time", agg{"avg": field("lead_time")}),
				}})
			},
		},
		{
			Name:        "analyze_booking_composition",
			Description: "Lead time, stay length and special requests per party composition",
			Projection:  rootProjection,
			build: func() map[string]any {
				return sizeZero(agg{"booking_composition": agg{
					"terms": s.composition(),
					"aggs":  s.stayFactors("average_lead_time", agg{"avg": field("lead_time")}),
				}})
			},
		},
	}
}
