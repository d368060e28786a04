package catalog

// Default returns the built-in smart-home demo catalog: one sensor per
// property kind plus the predefined service catalog used for composition
// planning. Used when no catalog document is configured.
func Default() *Catalog {
	c, err := New(DefaultDocument())
	if err != nil {
		// The built-in document is static and valid; a failure here is a
		// programming error.
		panic(err)
	}
	return c
}

// DefaultDocument returns the built-in demo catalog document.
func DefaultDocument() Document {
	return Document{
		Sensors: []SensorDescriptor{
			{
				ID:       "home:temperatureSensor_001",
				Name:     "Living Room Temperature",
				Location: "living_room",
				Observes: "home:Temperature",
				Range:    ValueRange{Min: -10, Max: 50, Unit: "°C"},
			},
			{
				ID:       "home:humiditySensor_001",
				Name:     "Living Room Humidity",
				Location: "living_room",
				Observes: "home:Humidity",
				Range:    ValueRange{Min: 0, Max: 100, Unit: "%RH"},
			},
			{
				ID:       "home:smokeSensor_001",
				Name:     "Kitchen Smoke Detector",
				Location: "kitchen",
				Observes: "home:SmokeLevel",
				Range:    ValueRange{Min: 0, Max: 500, Unit: "ppm"},
			},
			{
				ID:       "home:motionSensor_001",
				Name:     "Hallway Motion",
				Location: "hallway",
				Observes: "home:Motion",
				Range:    ValueRange{Min: 0, Max: 1, Unit: "presence"},
			},
			{
				ID:       "home:lightSensor_001",
				Name:     "Living Room Illuminance",
				Location: "living_room",
				Observes: "home:Illuminance",
				Range:    ValueRange{Min: 0, Max: 2000, Unit: "lux"},
			},
		},
		Platforms: []PlatformDescriptor{
			{
				ID:       "home:livingRoomHub",
				Name:     "Living Room Hub",
				Location: "living_room",
				Hosts: []string{
					"home:temperatureSensor_001",
					"home:humiditySensor_001",
					"home:lightSensor_001",
				},
			},
			{
				ID:       "home:kitchenHub",
				Name:     "Kitchen Hub",
				Location: "kitchen",
				Hosts:    []string{"home:smokeSensor_001"},
			},
		},
		Services: []ServiceDescriptor{
			{
				ID:          "smoke_detection",
				Name:        "Smoke Detection",
				Description: "Continuously monitors smoke concentration",
				Inputs:      []string{"smoke_level"},
				Outputs:     []string{"smoke_alert"},
			},
			{
				ID:          "temperature_monitoring",
				Name:        "Temperature Monitoring",
				Description: "Tracks ambient temperature against comfort bands",
				Inputs:      []string{"temperature"},
				Outputs:     []string{"temperature_reading", "temperature_alert"},
			},
			{
				ID:          "humidity_monitoring",
				Name:        "Humidity Monitoring",
				Description: "Tracks relative humidity against comfort bands",
				Inputs:      []string{"humidity"},
				Outputs:     []string{"humidity_reading"},
			},
			{
				ID:          "alarm_notification",
				Name:        "Alarm Notification",
				Description: "Delivers alarms to residents and remote contacts",
				Inputs:      []string{"smoke_alert", "temperature_alert"},
				Outputs:     []string{"notification"},
			},
			{
				ID:          "hvac_control",
				Name:        "HVAC Control",
				Description: "Adjusts heating, cooling and ventilation",
				Inputs:      []string{"temperature_reading", "humidity_reading"},
				Outputs:     []string{"hvac_command"},
			},
			{
				ID:          "lighting_control",
				Name:        "Lighting Control",
				Description: "Dims or brightens lighting by occupancy and lux",
				Inputs:      []string{"light_level", "occupancy"},
				Outputs:     []string{"lighting_command"},
			},
			{
				ID:          "occupancy_detection",
				Name:        "Occupancy Detection",
				Description: "Derives room occupancy from motion sensing",
				Inputs:      []string{"motion"},
				Outputs:     []string{"occupancy"},
			},
			{
				ID:          "energy_management",
				Name:        "Energy Management",
				Description: "Schedules devices into low-power modes",
				Inputs:      []string{"occupancy", "hvac_command"},
				Outputs:     []string{"energy_report"},
			},
			{
				ID:          "emergency_response",
				Name:        "Emergency Response",
				Description: "Coordinates evacuation and emergency contacts",
				Inputs:      []string{"notification"},
				Outputs:     []string{"emergency_action"},
			},
		},
	}
}
